package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCVPlainText(t *testing.T) {
	p := NewDocumentParser()

	text, err := p.DecodeCV("cv.txt", []byte("Jane Doe\r\nGo developer   \n\n\n\nBerlin"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer\n\nBerlin", text)
}

func TestDecodeCVDropsInvalidUTF8(t *testing.T) {
	text, err := NewDocumentParser().DecodeCV("cv.md", []byte("Jos\xff\xfeé"))
	require.NoError(t, err)
	assert.Equal(t, "José", text)
}

func TestDecodeCVTreatsPDFExtensionCaseInsensitively(t *testing.T) {
	_, err := NewDocumentParser().DecodeCV("CV.PDF", []byte("not really a pdf"))
	assert.ErrorContains(t, err, "failed to open PDF")
}
