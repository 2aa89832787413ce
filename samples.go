package sav

import (
	"hash/fnv"
	"io"

	"github.com/FastFilter/xorfilter"
	"github.com/carbocation/pfx"
)

// SampleSet holds the ordered cohort sample identifiers carried in the
// file header and answers subset-selection queries for the ingest path
// (SPEC_FULL.md §6.3's subset_samples).
type SampleSet struct {
	ids []string
}

// NewSampleSet wraps an ordered sample ID list.
func NewSampleSet(ids []string) *SampleSet {
	return &SampleSet{ids: append([]string(nil), ids...)}
}

// IDs returns the sample IDs in header order. The caller must not
// mutate the returned slice.
func (s *SampleSet) IDs() []string { return s.ids }

// Len returns the number of samples in the cohort.
func (s *SampleSet) Len() int { return len(s.ids) }

// Subset returns the subset of s's IDs that also appear in requested, in
// s's original header order. requested IDs that are not present in s
// are silently dropped, matching the ingest contract's "retained ids in
// order".
//
// For small requested sets this is a plain map lookup. For large cohorts
// being subset down to a large number of requested IDs, membership is
// first checked against a binary fuse filter (github.com/FastFilter/xorfilter)
// built over requested; the filter can only produce false positives, never
// false negatives, so every candidate it does not reject is still
// confirmed against the exact set before being retained. This means the
// filter can only save map probes on a miss -- it can never change which
// IDs end up in the result.
func (s *SampleSet) Subset(requested map[string]struct{}) []string {
	if len(requested) == 0 {
		return nil
	}

	exact := requested
	filter := buildMembershipFilter(requested)

	out := make([]string, 0, len(requested))
	for _, id := range s.ids {
		if filter != nil && !filter.Contains(hashSampleID(id)) {
			continue
		}
		if _, ok := exact[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// buildMembershipFilter constructs a binary fuse filter over requested's
// keys. It returns nil (disabling the fast path entirely) for sets too
// small to be worth the construction cost, or if construction fails --
// xorfilter.Populate can fail to converge on pathological key sets, and
// Subset must still be correct without it.
func buildMembershipFilter(requested map[string]struct{}) *xorfilter.BinaryFuse8 {
	const minSizeForFilter = 64
	if len(requested) < minSizeForFilter {
		return nil
	}

	keys := make([]uint64, 0, len(requested))
	for id := range requested {
		keys = append(keys, hashSampleID(id))
	}

	filter, err := xorfilter.PopulateBinaryFuse8(keys)
	if err != nil {
		return nil
	}
	return filter
}

func hashSampleID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// readSampleIDs reads sample_count (varint length + raw bytes) sample
// identifiers from r, reusing a scratch buffer across iterations the
// way the teacher format's sample-block reader does.
func readSampleIDs(r byteReader, sampleCount uint64) ([]string, error) {
	ids := make([]string, 0, sampleCount)

	var buf []byte
	for i := uint64(0); i < sampleCount; i++ {
		idLen, _, err := DecodeUvarint(r)
		if err != nil {
			return nil, pfx.Err(err)
		}

		if uint64(cap(buf)) < idLen {
			buf = make([]byte, idLen)
		}
		buf = buf[:idLen]
		if idLen > 0 {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, pfx.Err(wrapTruncated(err))
			}
		}

		// Copy out of the scratch buffer so it can be reused.
		ids = append(ids, string(buf))
	}

	return ids, nil
}

func writeSampleIDs(w byteWriter, ids []string) error {
	for _, id := range ids {
		if err := writeLengthPrefixedBytes(w, []byte(id)); err != nil {
			return err
		}
	}
	return nil
}
