package services

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StageFitCore        = "fit_core"
	StageFitSuggestions = "fit_suggestions"
)

var ErrQueueClosed = errors.New("worker is not accepting jobs")

// InputError reports text that is empty once normalized.
type InputError struct {
	Field string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s is empty after normalization", e.Field)
}

// ExtractionError means no JSON object could be located in an LLM answer.
type ExtractionError struct {
	Stage   string
	Message string
	Raw     string
}

func (e *ExtractionError) Error() string {
	if e.Stage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// ParseError means the extracted candidate is not valid JSON.
type ParseError struct {
	Stage string
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid JSON: %v", e.Stage, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FieldError is a single schema violation at a JSON path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError means the parsed JSON does not satisfy the target schema.
type ValidationError struct {
	Stage  string
	Raw    string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Stage != "" {
		sb.WriteString(e.Stage)
		sb.WriteString(": ")
	}
	sb.WriteString("validation failed:")
	for i, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %s: %s", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// TransportError wraps a failed LLM call after the client gave up retrying.
type TransportError struct {
	Stage    string
	Provider string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s call failed: %v", e.Stage, e.Provider, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// FetchError reports a job posting page that could not be downloaded.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
