package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegionsCommaAndRepeated(t *testing.T) {
	regions, err := parseRegions([]string{"chr1:1-100,chr2", "chr3"})
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Equal(t, "1", regions[0].Chromosome)
	assert.Equal(t, "2", regions[1].Chromosome)
	assert.Equal(t, "3", regions[2].Chromosome)
}

func TestReadSampleIDsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("NA001\nNA002\n\nNA003\n"), 0o644))

	ids, err := readSampleIDsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"NA001", "NA002", "NA003"}, ids)
}
