package sav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader() Header {
	return Header{
		MagicVersion: [8]byte{'s', 'a', 'v', 0, 1, 0, 0, 0},
		Samples:      NewSampleSet([]string{"NA001", "NA002", "NA003"}),
		Chromosome:   "chr1",
		Ploidy:       2,
	}
}

func TestWriterReaderHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testHeader())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, false)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, testHeader().MagicVersion, r.Header.MagicVersion)
	assert.Equal(t, []string{"NA001", "NA002", "NA003"}, r.Header.Samples.IDs())
	assert.Equal(t, "chr1", r.Header.Chromosome)
	assert.Equal(t, uint64(2), r.Header.Ploidy)
	assert.Equal(t, uint64(6), r.Header.HaplotypeCount())
}

func TestWriterReaderRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testHeader())
	require.NoError(t, err)

	markers := []*Marker{
		NewMarker(100, []byte("A"), []byte("G"), 6, []SparseEntry{
			{Offset: 1, Status: HasAlt},
			{Offset: 4, Status: IsMissing},
		}),
		NewMarker(205, []byte("GT"), nil, 6, nil),
		NewMarkerFromDense(9999, []byte("C"), []byte("T"),
			[]AlleleStatus{HasAlt, HasAlt, HasAlt, HasRef, HasAlt, HasRef}),
	}
	for _, m := range markers {
		require.NoError(t, w.Write(m))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, false)
	require.NoError(t, err)
	defer r.Close()

	var got []*Marker
	dst := &Marker{}
	for {
		ok, err := r.ReadNext(dst)
		require.NoError(t, err)
		if !ok {
			break
		}
		clone := *dst
		got = append(got, &clone)
	}

	require.Len(t, got, len(markers))
	for i, want := range markers {
		assert.Equal(t, want.Position, got[i].Position)
		assert.Equal(t, want.Ref, got[i].Ref)
		assert.Equal(t, want.Alt, got[i].Alt)
		assert.Equal(t, want.Vector().Entries(), got[i].Vector().Entries())
	}
}

func TestWriterReaderWithBlockCompression(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testHeader(), WithBlockCompression(2, 3))
	require.NoError(t, err)

	for i := uint64(0); i < 5; i++ {
		m := NewMarker(i*10+1, []byte("A"), []byte("T"), 6, []SparseEntry{
			{Offset: i % 6, Status: HasAlt},
		})
		require.NoError(t, w.Write(m))
	}
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, true)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	dst := &Marker{}
	for {
		ok, err := r.ReadNext(dst)
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
}

func TestReaderEmptyRecordStream(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testHeader())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := NewReader(&buf, false)
	require.NoError(t, err)
	defer r.Close()

	ok, err := r.ReadNext(&Marker{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewWriterRejectsInvalidPloidy(t *testing.T) {
	var buf bytes.Buffer
	h := testHeader()
	h.Ploidy = 256
	_, err := NewWriter(&buf, h)
	assert.ErrorIs(t, err, ErrInvalidPloidy)
}
