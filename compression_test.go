package sav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockWriterReaderRoundTrip(t *testing.T) {
	var sink bytes.Buffer
	bw, err := newBlockWriter(&sink, 2, 3)
	require.NoError(t, err)

	records := [][]byte{
		[]byte("record-one"),
		[]byte("record-two"),
		[]byte("record-three"),
	}
	for _, r := range records {
		require.NoError(t, bw.WriteRecord(r))
	}
	require.NoError(t, bw.Close())

	src := bytes.NewReader(sink.Bytes())
	br, err := newBlockReader(src, true)
	require.NoError(t, err)
	defer br.Close()

	var got []byte
	buf := make([]byte, 4)
	for {
		n, err := br.Read(buf)
		got = append(got, buf[:n]...)
		if err != nil {
			break
		}
	}

	assert.Equal(t, bytes.Join(records, nil), got)
}

func TestBlockWriterDisabledIsPassthrough(t *testing.T) {
	var sink bytes.Buffer
	bw, err := newBlockWriter(&sink, 0, 3)
	require.NoError(t, err)

	require.NoError(t, bw.WriteRecord([]byte("hello")))
	require.NoError(t, bw.WriteRecord([]byte("world")))
	require.NoError(t, bw.Close())

	assert.Equal(t, "helloworld", sink.String())
}

func TestBlockReaderDisabledIsPassthrough(t *testing.T) {
	src := bytes.NewReader([]byte("plainbytes"))
	br, err := newBlockReader(src, false)
	require.NoError(t, err)

	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('p'), b)
}

func TestNewBlockWriterReaderSelectMode(t *testing.T) {
	var sink bytes.Buffer
	bw, err := newBlockWriter(&sink, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, blockCompressionZstd, bw.mode)
	require.NoError(t, bw.Close())

	bw, err = newBlockWriter(&sink, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, blockCompressionDisabled, bw.mode)

	br, err := newBlockReader(bytes.NewReader(nil), true)
	require.NoError(t, err)
	assert.Equal(t, blockCompressionZstd, br.mode)

	br, err = newBlockReader(bytes.NewReader(nil), false)
	require.NoError(t, err)
	assert.Equal(t, blockCompressionDisabled, br.mode)
}

func TestLevelToEncoderLevel(t *testing.T) {
	assert.NotPanics(t, func() {
		for _, level := range []int{0, 1, 3, 6, 9, 12, 15, 19} {
			_ = levelToEncoderLevel(level)
		}
	})
}
