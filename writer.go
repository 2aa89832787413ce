package sav

import (
	"bufio"
	"io"

	"github.com/carbocation/pfx"
)

// WriterOption configures optional Writer behavior beyond the bit-exact
// per-record layout: block compression framing (§4.5).
type WriterOption func(*writerConfig)

type writerConfig struct {
	blockSize        int
	compressionLevel int
}

// WithBlockCompression enables outer zstd block framing: records are
// buffered until blockSize have accumulated, then flushed as one
// compressed frame at the given level (1-19; values outside that range
// are clamped). blockSize == 0 disables block compression entirely,
// which is also the default if this option is never supplied.
func WithBlockCompression(blockSize, level int) WriterOption {
	return func(c *writerConfig) {
		c.blockSize = blockSize
		c.compressionLevel = level
	}
}

// Writer emits a Header followed by a sequential stream of Markers to a
// byte sink, per the FILE grammar in SPEC_FULL.md §6.1. It is not safe
// for concurrent use, and records must be written in final position
// order -- the format has no provision for rewriting a prior record.
type Writer struct {
	sink   *bufio.Writer
	blocks *blockWriter
}

// NewWriter writes header immediately to sink and returns a Writer ready
// to accept records via Write.
func NewWriter(sink io.Writer, header Header, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{compressionLevel: 3}
	for _, opt := range opts {
		opt(&cfg)
	}

	buffered := bufio.NewWriter(sink)
	if err := writeHeader(buffered, header); err != nil {
		return nil, pfx.Err(err)
	}

	blocks, err := newBlockWriter(buffered, cfg.blockSize, cfg.compressionLevel)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &Writer{sink: buffered, blocks: blocks}, nil
}

func writeHeader(w byteWriter, h Header) error {
	if _, err := w.Write(h.MagicVersion[:]); err != nil {
		return pfx.Err(err)
	}

	ids := h.Samples.IDs()
	if err := encodeUvarintTo(w, uint64(len(ids))); err != nil {
		return pfx.Err(err)
	}
	if err := writeSampleIDs(w, ids); err != nil {
		return pfx.Err(err)
	}

	if err := writeLengthPrefixedBytes(w, []byte(h.Chromosome)); err != nil {
		return pfx.Err(err)
	}

	if h.Ploidy >= 256 {
		return pfx.Err(ErrInvalidPloidy)
	}
	if err := encodeUvarintTo(w, h.Ploidy); err != nil {
		return pfx.Err(err)
	}

	return pfx.Err(w.WriteByte(separatorByte))
}

// recordBuffer is a scratch byteWriter backed by a reusable []byte,
// letting Write serialize one record without allocating a fresh buffer
// per call.
type recordBuffer struct {
	buf []byte
}

func (b *recordBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *recordBuffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write serializes m and appends it to the record stream, routing the
// bytes through block compression if it was enabled.
func (w *Writer) Write(m *Marker) error {
	var rb recordBuffer
	if err := WriteMarker(&rb, m); err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(w.blocks.WriteRecord(rb.buf))
}

// Close flushes any pending compressed block and the underlying
// buffered sink. It does not close the sink itself.
func (w *Writer) Close() error {
	if err := w.blocks.Close(); err != nil {
		return pfx.Err(err)
	}
	return pfx.Err(w.sink.Flush())
}
