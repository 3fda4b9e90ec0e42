package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCVFilename(t *testing.T) {
	assert.Equal(t, "ada.pdf", NormalizeCVFilename("ada"))
	assert.Equal(t, "ada.pdf", NormalizeCVFilename("ada.pdf"))
	assert.Equal(t, "ada.PDF", NormalizeCVFilename("ada.PDF"), "suffix check is case-insensitive")
	assert.Equal(t, "ada.lovelace.pdf", NormalizeCVFilename("ada.lovelace"))
	assert.Equal(t, ".pdf", NormalizeCVFilename(""))
}
