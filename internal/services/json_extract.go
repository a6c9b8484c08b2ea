package services

import (
	"regexp"
	"strings"
)

var (
	jsonObjectRe    = regexp.MustCompile(`(?s)\{.*\}`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON returns the span from the first '{' to the last '}' of an LLM
// answer with line breaks flattened and trailing commas dropped. The result
// is not guaranteed to parse.
func ExtractJSON(text string) (string, error) {
	if text == "" {
		return "", &ExtractionError{Message: "empty LLM output", Raw: text}
	}

	candidate := jsonObjectRe.FindString(text)
	if candidate == "" {
		return "", &ExtractionError{Message: "no JSON object found in LLM output", Raw: text}
	}

	candidate = strings.TrimSpace(candidate)
	candidate = strings.NewReplacer("\r", " ", "\n", " ").Replace(candidate)
	candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")

	return candidate, nil
}
