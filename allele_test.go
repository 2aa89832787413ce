package sav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlleleStatusString(t *testing.T) {
	assert.Equal(t, "HasRef", HasRef.String())
	assert.Equal(t, "HasAlt", HasAlt.String())
	assert.Equal(t, "IsMissing", IsMissing.String())
	assert.Equal(t, "Illegal selection", AlleleStatus(99).String())
}
