package sav

import (
	"io"

	"github.com/carbocation/pfx"
)

// byteWriter is the minimal sink the varint encoders require: plain
// io.Writer plus WriteByte, which *bufio.Writer and *bytes.Buffer both
// already satisfy.
type byteWriter interface {
	io.Writer
	io.ByteWriter
}

// byteReader is the minimal source the record codec requires: ReadByte
// for varints, plus io.Reader so raw ref/alt bytes can be pulled with
// io.ReadFull. *bufio.Reader and *bytes.Reader both satisfy this.
type byteReader interface {
	io.Reader
	io.ByteReader
}

// uvarintSize reports the number of bytes EncodeUvarint would produce for
// v. The encoder's mode-selection logic (see marker.go) depends on this
// matching encodeUvarintTo byte-for-byte.
func uvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// EncodeUvarint returns the shortest-form little-endian base-128 encoding
// of v: 7 payload bits per byte, continuation signaled by the high bit.
func EncodeUvarint(v uint64) []byte {
	buf := make([]byte, 0, 10)
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

func encodeUvarintTo(w byteWriter, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return pfx.Err(err)
		}
		v >>= 7
	}
	if err := w.WriteByte(byte(v)); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// DecodeUvarint decodes a single plain varint from r, returning the value
// and the number of bytes consumed. Decoders accept any valid byte
// stream regardless of whether it is the shortest possible encoding;
// only the encoder is required to emit the shortest form. It fails with
// ErrTruncated if r is exhausted before a complete value is read.
func DecodeUvarint(r io.ByteReader) (value uint64, bytesConsumed int, err error) {
	var shift uint
	for {
		b, rerr := r.ReadByte()
		if rerr != nil {
			return 0, bytesConsumed, pfx.Err(wrapTruncated(rerr))
		}
		bytesConsumed++
		if b < 0x80 {
			value |= uint64(b) << shift
			return value, bytesConsumed, nil
		}
		value |= uint64(b&0x7f) << shift
		shift += 7
	}
}

// oneBitVarintSize mirrors encodeOneBitVarintTo's byte count for a given
// value, independent of the flag bit (the flag never changes width).
func oneBitVarintSize(v uint64) int {
	if v < (1 << 6) {
		return 1
	}
	return 1 + uvarintSize(v>>6)
}

// encodeOneBitVarintTo emits a one-bit-prefixed varint: byte 0 is
// [flag:1][cont:1][payload_lo6:6]; if cont is set, v>>6 follows as a
// standard plain varint.
func encodeOneBitVarintTo(w byteWriter, flag bool, v uint64) error {
	first := byte(v & 0x3f)
	rest := v >> 6
	if flag {
		first |= 0x80
	}
	if rest != 0 {
		first |= 0x40
		if err := w.WriteByte(first); err != nil {
			return pfx.Err(err)
		}
		return encodeUvarintTo(w, rest)
	}
	if err := w.WriteByte(first); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func decodeOneBitVarint(r io.ByteReader) (flag bool, value uint64, bytesConsumed int, err error) {
	b0, rerr := r.ReadByte()
	if rerr != nil {
		return false, 0, 0, pfx.Err(wrapTruncated(rerr))
	}
	bytesConsumed = 1
	flag = b0&0x80 != 0
	cont := b0&0x40 != 0
	value = uint64(b0 & 0x3f)
	if cont {
		rest, n, derr := DecodeUvarint(r)
		if derr != nil {
			return false, 0, 0, derr
		}
		value |= rest << 6
		bytesConsumed += n
	}
	return flag, value, bytesConsumed, nil
}

// twoBitVarintSize mirrors encodeTwoBitVarintTo's byte count for v.
func twoBitVarintSize(v uint64) int {
	if v < (1 << 5) {
		return 1
	}
	return 1 + uvarintSize(v>>5)
}

// encodeTwoBitVarintTo emits a two-bit-prefixed varint: byte 0 is
// [prefix:2][cont:1][payload_lo5:5]. prefix must be in [0,3].
func encodeTwoBitVarintTo(w byteWriter, prefix uint8, v uint64) error {
	first := byte(v&0x1f) | (prefix&0x3)<<6
	rest := v >> 5
	if rest != 0 {
		first |= 0x20
		if err := w.WriteByte(first); err != nil {
			return pfx.Err(err)
		}
		return encodeUvarintTo(w, rest)
	}
	if err := w.WriteByte(first); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func decodeTwoBitVarint(r io.ByteReader) (prefix uint8, value uint64, bytesConsumed int, err error) {
	b0, rerr := r.ReadByte()
	if rerr != nil {
		return 0, 0, 0, pfx.Err(wrapTruncated(rerr))
	}
	bytesConsumed = 1
	prefix = (b0 >> 6) & 0x3
	cont := b0&0x20 != 0
	value = uint64(b0 & 0x1f)
	if cont {
		rest, n, derr := DecodeUvarint(r)
		if derr != nil {
			return 0, 0, 0, derr
		}
		value |= rest << 5
		bytesConsumed += n
	}
	return prefix, value, bytesConsumed, nil
}
