package services

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DocumentParser turns an uploaded CV into plain text.
type DocumentParser interface {
	ExtractPDFText(data []byte) (string, error)
	DecodeCV(filename string, data []byte) (string, error)
}

type documentParser struct{}

func NewDocumentParser() DocumentParser {
	return &documentParser{}
}

// ExtractPDFText joins the plain text of every page with newlines. Pages
// that fail to decode contribute an empty string.
func (p *documentParser) ExtractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := r.NumPage()
	parts := make([]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			parts = append(parts, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, text)
	}

	return SanitizeWhitespace(strings.Join(parts, "\n")), nil
}

// DecodeCV reads .pdf files (case-insensitive) as PDF and everything else
// as UTF-8 text, dropping invalid byte sequences.
func (p *documentParser) DecodeCV(filename string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return p.ExtractPDFText(data)
	}
	return SanitizeWhitespace(decodeUTF8Lossy(data)), nil
}

func decodeUTF8Lossy(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
