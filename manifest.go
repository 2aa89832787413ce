package sav

import (
	"os"

	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v2"
)

// Manifest is the optional YAML configuration accepted by `sav import
// --manifest`, grounded on nvnieuwk/svync's YAML-driven config file
// (read via gopkg.in/yaml.v2 rather than svync's own schema, since this
// manifest only needs regions and a sample subset, not INFO/FORMAT
// field typing).
type Manifest struct {
	Regions []string `yaml:"regions"`
	Samples []string `yaml:"samples"`
}

// LoadManifest reads and parses a YAML manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, pfx.Err(err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, pfx.Err(err)
	}
	return m, nil
}

// MergeManifest combines manifest values with CLI-flag-supplied values,
// with flags winning over the manifest field-by-field when both are
// non-empty (SPEC_FULL.md §4.9).
func MergeManifest(m Manifest, flagRegions, flagSamples []string) (regions, samples []string) {
	regions = m.Regions
	if len(flagRegions) > 0 {
		regions = flagRegions
	}

	samples = m.Samples
	if len(flagSamples) > 0 {
		samples = flagSamples
	}

	return regions, samples
}
