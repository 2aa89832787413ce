package sav

import (
	"io"

	"github.com/carbocation/pfx"
)

// Marker is one variant record: site metadata plus the sparse allele
// vector of per-haplotype observations across the cohort. HaplotypeCount
// is not part of the serialized record; it is supplied by the container
// (SampleCount x Ploidy) and passed in explicitly on read.
type Marker struct {
	Position uint64
	Ref      []byte
	Alt      []byte

	vector *SparseVector
}

// NewMarker builds a marker directly from an already-sorted, already-
// deduplicated set of non-reference entries.
func NewMarker(position uint64, ref, alt []byte, haplotypeCount uint64, entries []SparseEntry) *Marker {
	return &Marker{
		Position: position,
		Ref:      ref,
		Alt:      alt,
		vector:   NewSparseVector(haplotypeCount, entries),
	}
}

// NewMarkerFromDense builds a marker from a dense per-haplotype status
// view, condensing it into a sparse vector. This is how a caller feeding
// the writer (e.g. the VCF ingest path) constructs a marker.
func NewMarkerFromDense(position uint64, ref, alt []byte, dense []AlleleStatus) *Marker {
	return &Marker{
		Position: position,
		Ref:      ref,
		Alt:      alt,
		vector:   CondenseDense(dense),
	}
}

// Vector returns the marker's sparse allele vector.
func (m *Marker) Vector() *SparseVector { return m.vector }

// Get is shorthand for m.Vector().Get(i).
func (m *Marker) Get(i uint64) AlleleStatus { return m.vector.Get(i) }

// separatorByte is appended after the header and after every record.
// Its value carries no meaning; it exists purely for legacy on-disk
// compatibility (SPEC_FULL.md §6.1).
const separatorByte = 0x00

// rleGroup is one run produced by walking the sparse entries left to
// right, merging consecutive entries that share both status and gap.
type rleGroup struct {
	gap    uint64
	status AlleleStatus
	repeat uint64 // count of additional entries folded into this run
}

// buildRLEGroups walks entries with the same last_pos-advance rule used
// by the plain encoding, merging a run of entries into one group
// whenever consecutive entries share status and gap.
func buildRLEGroups(entries []SparseEntry) []rleGroup {
	if len(entries) == 0 {
		return nil
	}
	groups := make([]rleGroup, 0, len(entries))

	lastPos := uint64(0)
	i := 0
	for i < len(entries) {
		anchor := entries[i]
		gap := anchor.Offset - lastPos
		lastPos = anchor.Offset + 1

		var repeat uint64
		j := i + 1
		for j < len(entries) {
			nextGap := entries[j].Offset - lastPos
			if nextGap != gap || entries[j].Status != anchor.Status {
				break
			}
			repeat++
			lastPos = entries[j].Offset + 1
			j++
		}

		groups = append(groups, rleGroup{gap: gap, status: anchor.Status, repeat: repeat})
		i = j
	}
	return groups
}

// plainSerializedSize computes the exact byte count the plain-mode
// payload would occupy for entries, by the same gap-walking procedure
// the encoder uses.
func plainSerializedSize(entries []SparseEntry) int {
	total := 0
	lastPos := uint64(0)
	for _, e := range entries {
		gap := e.Offset - lastPos
		lastPos = e.Offset + 1
		total += oneBitVarintSize(gap)
	}
	return total
}

// rleSerializedSize computes the exact byte count the RLE-mode payload
// would occupy for entries.
func rleSerializedSize(entries []SparseEntry) int {
	total := 0
	for _, g := range buildRLEGroups(entries) {
		total += twoBitVarintSize(g.gap)
		if g.repeat > 0 {
			total += uvarintSize(g.repeat)
		}
	}
	return total
}

// WriteMarker serializes m to w per SPEC_FULL.md §6.1: position, REF,
// ALT, then the allele payload in whichever of plain/RLE mode the
// estimators report as strictly smaller (ties favor plain), followed by
// the trailing separator byte.
func WriteMarker(w byteWriter, m *Marker) error {
	if err := encodeUvarintTo(w, m.Position); err != nil {
		return pfx.Err(err)
	}

	if err := writeLengthPrefixedBytes(w, m.Ref); err != nil {
		return pfx.Err(err)
	}
	if err := writeLengthPrefixedBytes(w, m.Alt); err != nil {
		return pfx.Err(err)
	}

	entries := m.vector.Entries()
	mode := modePlain
	if rleSerializedSize(entries) < plainSerializedSize(entries) {
		mode = modeRLE
	}

	// In RLE mode the count is the number of run headers that follow,
	// which is what readRLEPayload reads back.
	count := uint64(len(entries))
	if mode == modeRLE {
		count = uint64(len(buildRLEGroups(entries)))
	}

	if err := encodeOneBitVarintTo(w, mode == modeRLE, count); err != nil {
		return pfx.Err(err)
	}

	switch mode {
	case modeRLE:
		if err := writeRLEPayload(w, entries); err != nil {
			return pfx.Err(err)
		}
	case modePlain:
		if err := writePlainPayload(w, entries); err != nil {
			return pfx.Err(err)
		}
	}

	if err := w.WriteByte(separatorByte); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func writeLengthPrefixedBytes(w byteWriter, b []byte) error {
	if err := encodeUvarintTo(w, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return err
}

func writePlainPayload(w byteWriter, entries []SparseEntry) error {
	lastPos := uint64(0)
	for _, e := range entries {
		gap := e.Offset - lastPos
		lastPos = e.Offset + 1
		if err := encodeOneBitVarintTo(w, e.Status == HasAlt, gap); err != nil {
			return err
		}
	}
	return nil
}

func writeRLEPayload(w byteWriter, entries []SparseEntry) error {
	for _, g := range buildRLEGroups(entries) {
		prefix := uint8(0)
		if g.status == HasAlt {
			prefix |= 0x2
		}
		if g.repeat > 0 {
			prefix |= 0x1
		}
		if err := encodeTwoBitVarintTo(w, prefix, g.gap); err != nil {
			return err
		}
		if g.repeat > 0 {
			if err := encodeUvarintTo(w, g.repeat); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadMarker decodes one record from r into dst, given the container's
// haplotype count. dst's Ref/Alt/entries buffers are overwritten in
// place so the same *Marker can be reused across successive calls.
func ReadMarker(r byteReader, haplotypeCount uint64, dst *Marker) error {
	position, _, err := DecodeUvarint(r)
	if err != nil {
		return pfx.Err(err)
	}

	ref, err := readLengthPrefixedBytes(r)
	if err != nil {
		return pfx.Err(err)
	}
	alt, err := readLengthPrefixedBytes(r)
	if err != nil {
		return pfx.Err(err)
	}

	rle, count, _, err := decodeOneBitVarint(r)
	if err != nil {
		return pfx.Err(err)
	}
	mode := modePlain
	if rle {
		mode = modeRLE
	}

	var entries []SparseEntry
	switch mode {
	case modeRLE:
		entries, err = readRLEPayload(r, count)
	case modePlain:
		entries, err = readPlainPayload(r, count)
	}
	if err != nil {
		return pfx.Err(err)
	}

	if _, err := r.ReadByte(); err != nil {
		return pfx.Err(wrapTruncated(err))
	}

	dst.Position = position
	dst.Ref = ref
	dst.Alt = alt
	dst.vector = NewSparseVector(haplotypeCount, entries)
	return nil
}

func readLengthPrefixedBytes(r byteReader) ([]byte, error) {
	n, _, err := DecodeUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapTruncated(err)
	}
	return buf, nil
}

func readPlainPayload(r byteReader, count uint64) ([]SparseEntry, error) {
	if count == 0 {
		return nil, nil
	}
	entries := make([]SparseEntry, count)
	totalOffset := uint64(0)
	for i := range entries {
		altFlag, gap, _, err := decodeOneBitVarint(r)
		if err != nil {
			return nil, err
		}
		totalOffset += gap
		status := IsMissing
		if altFlag {
			status = HasAlt
		}
		entries[i] = SparseEntry{Offset: totalOffset, Status: status}
		totalOffset++
	}
	return entries, nil
}

type rleHeader struct {
	gap    uint64
	status AlleleStatus
	repeat uint64
}

func readRLEPayload(r byteReader, count uint64) ([]SparseEntry, error) {
	headers := make([]rleHeader, count)
	var totalRepeats uint64
	for i := range headers {
		prefix, gap, _, err := decodeTwoBitVarint(r)
		if err != nil {
			return nil, err
		}
		status := IsMissing
		if prefix&0x2 != 0 {
			status = HasAlt
		}

		var repeat uint64
		if prefix&0x1 != 0 {
			repeat, _, err = DecodeUvarint(r)
			if err != nil {
				return nil, err
			}
		}

		headers[i] = rleHeader{gap: gap, status: status, repeat: repeat}
		totalRepeats += repeat
	}

	entries := make([]SparseEntry, 0, count+totalRepeats)
	lastPos := uint64(0)
	for _, h := range headers {
		offset := lastPos + h.gap
		entries = append(entries, SparseEntry{Offset: offset, Status: h.status})
		lastPos = offset + 1

		for k := uint64(0); k < h.repeat; k++ {
			offset = offset + h.gap + 1
			entries = append(entries, SparseEntry{Offset: offset, Status: h.status})
			lastPos = offset + 1
		}
	}
	return entries, nil
}
