package sav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegionVariants(t *testing.T) {
	cases := []struct {
		in   string
		want Region
	}{
		{"chr1", Region{Chromosome: "1"}},
		{"chr1:1000-2000", Region{Chromosome: "1", Start: 1000, End: 2000}},
		{"chr1:1000-", Region{Chromosome: "1", Start: 1000}},
		{"chr1:-2000", Region{Chromosome: "1", End: 2000}},
		{"chrX", Region{Chromosome: "X"}},
		{"chrMT", Region{Chromosome: "MT"}},
	}
	for _, c := range cases {
		got, err := ParseRegion(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseRegionRejectsInvertedRange(t *testing.T) {
	_, err := ParseRegion("chr1:2000-1000")
	assert.Error(t, err)
}

func TestParseRegionRejectsMissingDash(t *testing.T) {
	_, err := ParseRegion("chr1:1000")
	assert.Error(t, err)
}

func TestParseRegions(t *testing.T) {
	regions, err := ParseRegions("chr1:1-100, chr2")
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "1", regions[0].Chromosome)
	assert.Equal(t, "2", regions[1].Chromosome)
}

func TestRegionContains(t *testing.T) {
	r := Region{Chromosome: "1", Start: 100, End: 200}
	assert.True(t, r.Contains("chr1", 150))
	assert.False(t, r.Contains("chr1", 50))
	assert.False(t, r.Contains("chr1", 250))
	assert.False(t, r.Contains("chr2", 150))

	unbounded := Region{Chromosome: "1"}
	assert.True(t, unbounded.Contains("chr1", 1))
	assert.True(t, unbounded.Contains("chr1", 1<<40))
}
