package vcfingest

import (
	"strconv"
	"strings"

	"github.com/pinotree/savvy"
)

// parseGT splits a VCF GT sample field ("0/1", "0|1", "./1", ...) into
// one sav.AlleleStatus per haplotype: "." is IsMissing, "0" is HasRef,
// anything else is HasAlt (multi-allelic sites are collapsed to
// alt-vs-not, matching the sparse vector's binary status domain).
func parseGT(gt string) []sav.AlleleStatus {
	alleles := strings.FieldsFunc(gt, func(r rune) bool { return r == '/' || r == '|' })
	statuses := make([]sav.AlleleStatus, len(alleles))
	for i, a := range alleles {
		switch {
		case a == "." || a == "":
			statuses[i] = sav.IsMissing
		case a == "0":
			statuses[i] = sav.HasRef
		default:
			statuses[i] = sav.HasAlt
		}
	}
	return statuses
}

// hdsMissingThreshold is the cutoff below which a haplotype dosage
// value is called HasRef rather than HasAlt (SPEC_FULL.md §4.10).
const hdsMissingThreshold = 0.5

// parseHDS splits a VCF HDS sample field (comma-separated per-haplotype
// dosages in [0,1]) into one sav.AlleleStatus per haplotype, thresholded
// at hdsMissingThreshold. A dosage field that fails to parse as a float
// is treated as IsMissing rather than erroring the whole record, the
// same tolerant-decode stance the format's own varint decoders take
// toward unrecognized-but-structurally-valid input.
func parseHDS(hds string) []sav.AlleleStatus {
	fields := strings.Split(hds, ",")
	statuses := make([]sav.AlleleStatus, len(fields))
	for i, f := range fields {
		if f == "." || f == "" {
			statuses[i] = sav.IsMissing
			continue
		}
		dosage, err := strconv.ParseFloat(f, 64)
		if err != nil {
			statuses[i] = sav.IsMissing
			continue
		}
		if dosage >= hdsMissingThreshold {
			statuses[i] = sav.HasAlt
		} else {
			statuses[i] = sav.HasRef
		}
	}
	return statuses
}

// sampleStatuses extracts the per-haplotype AlleleStatus slice for one
// sample's FORMAT-field value, according to format.
func sampleStatuses(format DataFormat, formatKeys []string, sampleValue string) []sav.AlleleStatus {
	fields := strings.Split(sampleValue, ":")

	key := "GT"
	if format == DataFormatHDS {
		key = "HDS"
	}

	for i, k := range formatKeys {
		if k != key {
			continue
		}
		if i >= len(fields) {
			return nil
		}
		if format == DataFormatHDS {
			return parseHDS(fields[i])
		}
		return parseGT(fields[i])
	}
	return nil
}
