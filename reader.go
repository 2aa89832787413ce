package sav

import (
	"bufio"
	"io"

	"github.com/carbocation/pfx"
)

// magicVersionLength is the fixed width of the opaque magic/version field
// carried at the start of every file. The reader records it but does not
// validate its contents beyond length, matching the format's own design
// note that the magic bytes are retained verbatim rather than enforced.
const magicVersionLength = 8

// Header is the file-level metadata that precedes the record stream:
// the opaque magic/version tag, the ordered sample identifiers, the
// chromosome this file covers, and the ploidy shared by every sample.
type Header struct {
	MagicVersion [magicVersionLength]byte
	Samples      *SampleSet
	Chromosome   string
	Ploidy       uint64
}

// HaplotypeCount returns SampleCount x Ploidy, the bound every marker's
// sparse vector in this file is constructed against.
func (h Header) HaplotypeCount() uint64 {
	return uint64(h.Samples.Len()) * h.Ploidy
}

// Reader pulls Header followed by a sequential stream of Markers out of
// a byte source, per the FILE grammar in SPEC_FULL.md §6.1. It is not
// safe for concurrent use.
type Reader struct {
	Header Header

	blocks  *blockReader
	records *bufio.Reader // buffers blocks so Peek can detect end-of-stream
}

// NewReader parses the file header from src and returns a Reader
// positioned at the first record. If blockCompressed is true, the
// record stream is assumed to be chunked into zstd frames per §4.5;
// this must match what the writer that produced src was configured
// with, since the framing carries no self-describing flag.
func NewReader(src io.Reader, blockCompressed bool) (*Reader, error) {
	buffered := bufio.NewReader(src)

	header, err := readHeader(buffered)
	if err != nil {
		return nil, pfx.Err(err)
	}

	blocks, err := newBlockReader(buffered, blockCompressed)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &Reader{
		Header:  header,
		blocks:  blocks,
		records: bufio.NewReader(blocks),
	}, nil
}

func readHeader(r byteReader) (Header, error) {
	var h Header

	if _, err := io.ReadFull(r, h.MagicVersion[:]); err != nil {
		return Header{}, pfx.Err(wrapTruncated(err))
	}

	sampleCount, _, err := DecodeUvarint(r)
	if err != nil {
		return Header{}, pfx.Err(err)
	}

	ids, err := readSampleIDs(r, sampleCount)
	if err != nil {
		return Header{}, pfx.Err(err)
	}
	h.Samples = NewSampleSet(ids)

	chrom, err := readLengthPrefixedBytes(r)
	if err != nil {
		return Header{}, pfx.Err(err)
	}
	h.Chromosome = string(chrom)

	ploidy, _, err := DecodeUvarint(r)
	if err != nil {
		return Header{}, pfx.Err(err)
	}
	if ploidy >= 256 {
		return Header{}, pfx.Err(ErrInvalidPloidy)
	}
	h.Ploidy = ploidy

	if _, err := r.ReadByte(); err != nil {
		return Header{}, pfx.Err(wrapTruncated(err))
	}

	return h, nil
}

// ReadNext decodes the next record from the stream into dst, which is
// overwritten in place so the same *Marker can be reused across calls.
// It returns (false, nil) once the stream is exhausted with no partial
// record pending.
func (r *Reader) ReadNext(dst *Marker) (bool, error) {
	if _, err := r.records.Peek(1); err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, pfx.Err(wrapTruncated(err))
	}

	if err := ReadMarker(r.records, r.Header.HaplotypeCount(), dst); err != nil {
		return false, pfx.Err(err)
	}
	return true, nil
}

// Close releases any resources (e.g. the zstd decoder) held by the
// reader. It does not close the underlying source.
func (r *Reader) Close() error {
	return r.blocks.Close()
}
