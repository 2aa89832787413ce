package sav

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// Region is a chromosome plus an optional 1-based inclusive position
// range, as accepted by the CLI's --regions flag and consulted only by
// the ingest layer (SPEC_FULL.md §3): the container itself carries
// exactly one chromosome per file and is unaware of regions.
type Region struct {
	Chromosome string
	Start      uint64 // 0 means unbounded start
	End        uint64 // 0 means unbounded end
}

// ParseRegion parses "chr[:start-end]", e.g. "chr1", "chr1:1000-2000",
// "chr1:1000-" (unbounded end), "chr1:-2000" (unbounded start).
func ParseRegion(s string) (Region, error) {
	chrom, rangePart, hasRange := strings.Cut(s, ":")
	r := Region{Chromosome: normalizeChromosome(chrom)}
	if !hasRange {
		return r, nil
	}

	startStr, endStr, ok := strings.Cut(rangePart, "-")
	if !ok {
		return Region{}, pfx.Err(fmt.Errorf("region %q: expected start-end after ':'", s))
	}

	if startStr != "" {
		start, err := strconv.ParseUint(startStr, 10, 64)
		if err != nil {
			return Region{}, pfx.Err(fmt.Errorf("region %q: invalid start: %w", s, err))
		}
		r.Start = start
	}
	if endStr != "" {
		end, err := strconv.ParseUint(endStr, 10, 64)
		if err != nil {
			return Region{}, pfx.Err(fmt.Errorf("region %q: invalid end: %w", s, err))
		}
		r.End = end
	}

	if r.Start != 0 && r.End != 0 && r.Start > r.End {
		return Region{}, pfx.Err(fmt.Errorf("region %q: start > end", s))
	}

	return r, nil
}

// ParseRegions splits a comma-separated --regions value into its
// constituent Region values.
func ParseRegions(s string) ([]Region, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	regions := make([]Region, 0, len(parts))
	for _, p := range parts {
		r, err := ParseRegion(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// Contains reports whether (chrom, pos) falls within r. Chromosome
// comparison is by normalized token, matching what ParseRegion stores.
func (r Region) Contains(chrom string, pos uint64) bool {
	if normalizeChromosome(chrom) != r.Chromosome {
		return false
	}
	if r.Start != 0 && pos < r.Start {
		return false
	}
	if r.End != 0 && pos > r.End {
		return false
	}
	return true
}

// normalizeChromosome canonicalizes the handful of spellings a VCF or a
// CLI user might supply for the same chromosome (a leading "chr",
// case variation on X/Y/MT) into one token, the same kind of
// case-by-case normalization the teacher format's own Chromosome
// function performed for its numeric chromosome codes.
func normalizeChromosome(chrom string) string {
	token := strings.TrimPrefix(strings.TrimSpace(chrom), "chr")
	switch strings.ToUpper(token) {
	case "X":
		return "X"
	case "Y":
		return "Y"
	case "XY":
		return "XY"
	case "MT", "M":
		return "MT"
	default:
		return token
	}
}
