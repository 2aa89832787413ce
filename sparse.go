package sav

import "sort"

// SparseEntry is a single non-reference haplotype observation: an
// absolute offset into the haplotype vector, paired with whether that
// slot carries an alternate allele or is missing entirely.
type SparseEntry struct {
	Offset uint64
	Status AlleleStatus // HasAlt or IsMissing; never HasRef
}

// SparseVector is a logical view over haplotypeCount haplotype slots in
// which the overwhelming majority are implicitly the reference allele.
// Only entries whose status is HasAlt or IsMissing are stored, sorted
// strictly ascending by Offset with no duplicates.
type SparseVector struct {
	haplotypeCount uint64
	entries        []SparseEntry
}

// NewSparseVector builds a SparseVector over haplotypeCount slots from
// an already-sorted, already-deduplicated set of non-reference entries.
// Callers that have a dense allele view should use CondenseDense instead.
func NewSparseVector(haplotypeCount uint64, entries []SparseEntry) *SparseVector {
	return &SparseVector{haplotypeCount: haplotypeCount, entries: entries}
}

// CondenseDense walks a dense per-haplotype status slice and keeps only
// the non-reference slots, in order. This is the write-path "condense
// observations into a sparse vector" step described in the system
// overview.
func CondenseDense(dense []AlleleStatus) *SparseVector {
	entries := make([]SparseEntry, 0)
	for i, s := range dense {
		if s != HasRef {
			entries = append(entries, SparseEntry{Offset: uint64(i), Status: s})
		}
	}
	return NewSparseVector(uint64(len(dense)), entries)
}

// HaplotypeCount returns the logical length of the vector.
func (v *SparseVector) HaplotypeCount() uint64 { return v.haplotypeCount }

// Entries returns the underlying non-reference entries, in offset order.
// The caller must not mutate the returned slice.
func (v *SparseVector) Entries() []SparseEntry { return v.entries }

// Get returns the allele status at haplotype index i. Absent indices are
// HasRef. Lookup is a binary search over the sparse entries, O(log n).
func (v *SparseVector) Get(i uint64) AlleleStatus {
	entries := v.entries
	idx := sort.Search(len(entries), func(k int) bool { return entries[k].Offset >= i })
	if idx < len(entries) && entries[idx].Offset == i {
		return entries[idx].Status
	}
	return HasRef
}

// CheckedGet is a checked variant of Get retained verbatim from the
// source format for bit-for-bit behavioral compatibility: it bounds i
// against len(entries) rather than haplotypeCount, which means it
// rejects every legal haplotype index at or above len(entries); since
// len(entries) <= haplotypeCount, it never accepts an index past
// haplotypeCount. This is almost certainly a defect in the original
// format's checked accessor (see SPEC_FULL.md §9); callers that want the
// full haplotype-range bound should use CheckedGetByHaplotype instead.
func (v *SparseVector) CheckedGet(i uint64) (AlleleStatus, error) {
	if i >= uint64(len(v.entries)) {
		return 0, ErrOutOfRange
	}
	return v.Get(i), nil
}

// CheckedGetByHaplotype is the checked accessor with the bound the
// original format's checked accessor should have used: it rejects i
// only when i is outside [0, haplotypeCount).
func (v *SparseVector) CheckedGetByHaplotype(i uint64) (AlleleStatus, error) {
	if i >= v.haplotypeCount {
		return 0, ErrOutOfRange
	}
	return v.Get(i), nil
}

// AlleleIterator produces one AlleleStatus per haplotype slot, in order,
// materializing the implicit HasRef gaps between stored entries. It is
// finite and non-restartable; call Iter again for a fresh pass.
type AlleleIterator struct {
	v       *SparseVector
	next    uint64 // next haplotype index to emit
	entryAt int    // index into v.entries of the next stored entry, if any
}

// Iter returns a fresh iterator over every haplotype slot in order.
func (v *SparseVector) Iter() *AlleleIterator {
	return &AlleleIterator{v: v}
}

// Next returns the next allele status and true, or the zero value and
// false once haplotypeCount statuses have been produced.
func (it *AlleleIterator) Next() (AlleleStatus, bool) {
	if it.next >= it.v.haplotypeCount {
		return 0, false
	}
	i := it.next
	it.next++
	if it.entryAt < len(it.v.entries) && it.v.entries[it.entryAt].Offset == i {
		status := it.v.entries[it.entryAt].Status
		it.entryAt++
		return status, true
	}
	return HasRef, true
}

// NonRefIterator produces the stored SparseEntry values in offset order.
type NonRefIterator struct {
	entries []SparseEntry
	next    int
}

// IterNonRef returns a fresh iterator over only the stored, non-reference
// entries.
func (v *SparseVector) IterNonRef() *NonRefIterator {
	return &NonRefIterator{entries: v.entries}
}

// Next returns the next stored entry and true, or the zero value and
// false once all entries have been produced.
func (it *NonRefIterator) Next() (SparseEntry, bool) {
	if it.next >= len(it.entries) {
		return SparseEntry{}, false
	}
	e := it.entries[it.next]
	it.next++
	return e, true
}

// AlleleFrequency returns count(HasAlt) / (haplotypeCount - count(IsMissing)).
// When every haplotype is missing, the divisor is zero and the result is
// the implementation-defined IEEE-754 outcome of that division (NaN);
// callers must not depend on its exact bit pattern.
func (v *SparseVector) AlleleFrequency() float64 {
	var altCount, missingCount uint64
	for _, e := range v.entries {
		switch e.Status {
		case HasAlt:
			altCount++
		case IsMissing:
			missingCount++
		}
	}
	denominator := v.haplotypeCount - missingCount
	return float64(altCount) / float64(denominator)
}
