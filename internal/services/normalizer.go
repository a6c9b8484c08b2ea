package services

import (
	"regexp"
	"strings"
	"unicode"
)

// spacedPairThreshold is the number of letter-space-letter pairs above which
// text is treated as a spaced-out PDF extraction. Every single-space word
// boundary in ordinary prose counts as a pair too, so nearly any real CV
// crosses it and has its single spaces collapsed. Only runs of two or more
// spaces survive as word separators.
const spacedPairThreshold = 25

var (
	trailingBlanksRe = regexp.MustCompile(`[ \t]+\n`)
	manyNewlinesRe   = regexp.MustCompile(`\n{3,}`)
)

// NormalizeSpacedText repairs "C V   E n g i n e e r" style text and collapses
// whitespace runs. Short prose keeps its single spaces.
func NormalizeSpacedText(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return ""
	}

	if countSpacedPairs(runes) >= spacedPairThreshold {
		runes = dropSingleGaps(runes)
	}

	return strings.TrimSpace(collapseWhitespace(runes))
}

// SanitizeWhitespace normalizes line endings and blank lines of extracted text.
func SanitizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingBlanksRe.ReplaceAllString(text, "\n")
	text = manyNewlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0xC0 && r <= 0xD6, r >= 0xD8 && r <= 0xF6, r >= 0xF8 && r <= 0xFF:
		return true
	}
	return false
}

// countSpacedPairs counts non-overlapping "alnum, whitespace run, alnum" matches.
func countSpacedPairs(runes []rune) int {
	count := 0
	for i := 0; i < len(runes); i++ {
		if !isWordRune(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j > i+1 && j < len(runes) && isWordRune(runes[j]) {
			count++
			i = j
		}
	}
	return count
}

// dropSingleGaps removes lone whitespace characters squeezed between two
// alphanumerics. Wider gaps survive as word boundaries.
func dropSingleGaps(runes []rune) []rune {
	out := make([]rune, 0, len(runes))
	for i, r := range runes {
		if unicode.IsSpace(r) && i > 0 && i+1 < len(runes) &&
			isWordRune(runes[i-1]) && isWordRune(runes[i+1]) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func collapseWhitespace(runes []rune) string {
	var sb strings.Builder
	sb.Grow(len(runes))
	for i := 0; i < len(runes); {
		if !unicode.IsSpace(runes[i]) {
			sb.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j-i >= 2 {
			sb.WriteByte(' ')
		} else {
			sb.WriteRune(runes[i])
		}
		i = j
	}
	return sb.String()
}
