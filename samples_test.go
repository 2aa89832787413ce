package sav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleSetSubsetPreservesOrder(t *testing.T) {
	s := NewSampleSet([]string{"c", "a", "b", "d"})
	got := s.Subset(map[string]struct{}{"a": {}, "d": {}})
	assert.Equal(t, []string{"a", "d"}, got)
}

func TestSampleSetSubsetDropsUnknownIDs(t *testing.T) {
	s := NewSampleSet([]string{"a", "b"})
	got := s.Subset(map[string]struct{}{"a": {}, "zzz": {}})
	assert.Equal(t, []string{"a"}, got)
}

func TestSampleSetSubsetEmptyRequest(t *testing.T) {
	s := NewSampleSet([]string{"a", "b"})
	assert.Nil(t, s.Subset(map[string]struct{}{}))
}

func TestSampleSetSubsetLargeCohortUsesFilterPath(t *testing.T) {
	ids := make([]string, 0, 200)
	requested := make(map[string]struct{}, 100)
	for i := 0; i < 200; i++ {
		id := string(rune('A'+(i%26))) + string(rune('a'+(i/26)))
		ids = append(ids, id)
		if i%2 == 0 {
			requested[id] = struct{}{}
		}
	}
	s := NewSampleSet(ids)
	got := s.Subset(requested)
	assert.Len(t, got, 100)
	for _, id := range got {
		_, ok := requested[id]
		assert.True(t, ok)
	}
}

func TestSampleIDsWriteReadRoundTrip(t *testing.T) {
	ids := []string{"a", "bb", ""}
	var buf bytes.Buffer
	require.NoError(t, writeSampleIDs(&buf, ids))

	got, err := readSampleIDs(&buf, uint64(len(ids)))
	require.NoError(t, err)
	assert.Equal(t, ids, got)
}
