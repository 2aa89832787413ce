package vcfingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sav "github.com/pinotree/savvy"
)

func TestParseGT(t *testing.T) {
	cases := []struct {
		in   string
		want []sav.AlleleStatus
	}{
		{"0/1", []sav.AlleleStatus{sav.HasRef, sav.HasAlt}},
		{"0|0", []sav.AlleleStatus{sav.HasRef, sav.HasRef}},
		{"./.", []sav.AlleleStatus{sav.IsMissing, sav.IsMissing}},
		{"1/2", []sav.AlleleStatus{sav.HasAlt, sav.HasAlt}},
		{"./1", []sav.AlleleStatus{sav.IsMissing, sav.HasAlt}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, parseGT(c.in), c.in)
	}
}

func TestParseHDS(t *testing.T) {
	cases := []struct {
		in   string
		want []sav.AlleleStatus
	}{
		{"0,1", []sav.AlleleStatus{sav.HasRef, sav.HasAlt}},
		{"0.49,0.5", []sav.AlleleStatus{sav.HasRef, sav.HasAlt}},
		{".,0.9", []sav.AlleleStatus{sav.IsMissing, sav.HasAlt}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, parseHDS(c.in), c.in)
	}
}

func TestSampleStatuses(t *testing.T) {
	formatKeys := []string{"GT", "HDS"}
	got := sampleStatuses(DataFormatGT, formatKeys, "0/1:0.1,0.9")
	assert.Equal(t, []sav.AlleleStatus{sav.HasRef, sav.HasAlt}, got)

	got = sampleStatuses(DataFormatHDS, formatKeys, "0/1:0.1,0.9")
	assert.Equal(t, []sav.AlleleStatus{sav.HasRef, sav.HasAlt}, got)
}
