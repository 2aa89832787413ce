package sav

import (
	"bytes"
	"errors"
	"io"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/zstd"
)

// blockCompression indicates whether the outer container wraps the
// marker-record stream in a standard compressor. Adapted from the
// teacher's own Compression enum (which distinguished disabled/zlib/
// zstd SNP-block compression); SAV only ever uses zstd for its outer
// block framing, so the only meaningful states are on and off.
type blockCompression uint8

const (
	blockCompressionDisabled blockCompression = iota
	blockCompressionZstd
)

// levelToEncoderLevel maps the CLI's 1-19 compression level (default 3,
// matching SPEC_FULL.md §6.2/§4.5) onto one of zstd's four encoder speed
// tiers, since the public Go encoder does not expose 19 discrete levels.
func levelToEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 6:
		return zstd.SpeedDefault
	case level <= 12:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// blockWriter accumulates up to blockSize marker records' worth of raw
// bytes and flushes each block as one zstd frame, framed as
// uncompressed_len:varint compressed_len:varint compressed_bytes. A
// blockSize of 0 disables block compression: WriteRecord passes bytes
// straight through to the underlying sink and Close is a no-op.
type blockWriter struct {
	sink      byteWriter
	blockSize int
	mode      blockCompression
	encoder   *zstd.Encoder

	buf          bytes.Buffer
	recordsInBuf int
}

func newBlockWriter(sink byteWriter, blockSize int, level int) (*blockWriter, error) {
	mode := blockCompressionDisabled
	if blockSize > 0 {
		mode = blockCompressionZstd
	}

	bw := &blockWriter{sink: sink, blockSize: blockSize, mode: mode}
	if mode == blockCompressionZstd {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(levelToEncoderLevel(level)))
		if err != nil {
			return nil, pfx.Err(err)
		}
		bw.encoder = enc
	}
	return bw, nil
}

// WriteRecord buffers one already-serialized record and flushes the
// current block once blockSize records have accumulated.
func (bw *blockWriter) WriteRecord(record []byte) error {
	switch bw.mode {
	case blockCompressionDisabled:
		_, err := bw.sink.Write(record)
		return pfx.Err(err)
	}

	if _, err := bw.buf.Write(record); err != nil {
		return pfx.Err(err)
	}
	bw.recordsInBuf++

	if bw.recordsInBuf >= bw.blockSize {
		return bw.flushBlock()
	}
	return nil
}

func (bw *blockWriter) flushBlock() error {
	if bw.recordsInBuf == 0 {
		return nil
	}

	uncompressed := bw.buf.Bytes()
	compressed := bw.encoder.EncodeAll(uncompressed, nil)

	if err := encodeUvarintTo(bw.sink, uint64(len(uncompressed))); err != nil {
		return pfx.Err(err)
	}
	if err := encodeUvarintTo(bw.sink, uint64(len(compressed))); err != nil {
		return pfx.Err(err)
	}
	if _, err := bw.sink.Write(compressed); err != nil {
		return pfx.Err(err)
	}

	bw.buf.Reset()
	bw.recordsInBuf = 0
	return nil
}

// Close flushes any pending block and releases the zstd encoder.
func (bw *blockWriter) Close() error {
	if bw.mode == blockCompressionDisabled {
		return nil
	}
	if err := bw.flushBlock(); err != nil {
		return err
	}
	return bw.encoder.Close()
}

// blockReader is the read-side counterpart of blockWriter: when block
// compression is in use it transparently decompresses each frame into an
// internal buffer that ReadMarker's byteReader pulls from; when it is
// disabled it is a passthrough to the underlying source.
type blockReader struct {
	src     byteReader
	mode    blockCompression
	decoder *zstd.Decoder

	pending *bytes.Reader
}

func newBlockReader(src byteReader, enabled bool) (*blockReader, error) {
	mode := blockCompressionDisabled
	if enabled {
		mode = blockCompressionZstd
	}

	br := &blockReader{src: src, mode: mode}
	if mode == blockCompressionZstd {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, pfx.Err(err)
		}
		br.decoder = dec
	}
	return br, nil
}

func (br *blockReader) ReadByte() (byte, error) {
	if br.mode == blockCompressionDisabled {
		return br.src.ReadByte()
	}
	if err := br.ensurePending(); err != nil {
		return 0, err
	}
	return br.pending.ReadByte()
}

func (br *blockReader) Read(p []byte) (int, error) {
	if br.mode == blockCompressionDisabled {
		return br.src.Read(p)
	}
	if err := br.ensurePending(); err != nil {
		return 0, err
	}
	return br.pending.Read(p)
}

// ensurePending loads the next compressed block from src once the
// current one has been fully consumed.
func (br *blockReader) ensurePending() error {
	if br.pending != nil && br.pending.Len() > 0 {
		return nil
	}

	uncompressedLen, n, err := DecodeUvarint(br.src)
	if err != nil {
		// No byte of a new frame header: a clean end of the block stream.
		if n == 0 && errors.Is(err, ErrTruncated) {
			return io.EOF
		}
		return err
	}
	compressedLen, _, err := DecodeUvarint(br.src)
	if err != nil {
		return err
	}

	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(br.src, compressed); err != nil {
		return wrapTruncated(err)
	}

	uncompressed, err := br.decoder.DecodeAll(compressed, make([]byte, 0, uncompressedLen))
	if err != nil {
		return pfx.Err(err)
	}

	br.pending = bytes.NewReader(uncompressed)
	return nil
}

func (br *blockReader) Close() error {
	if br.mode == blockCompressionZstd && br.decoder != nil {
		br.decoder.Close()
	}
	return nil
}
