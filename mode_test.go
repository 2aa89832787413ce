package sav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodingModeString(t *testing.T) {
	assert.Equal(t, "Plain", modePlain.String())
	assert.Equal(t, "RLE", modeRLE.String())
	assert.Equal(t, "Illegal selection", encodingMode(99).String())
}
