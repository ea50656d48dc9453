package xlitfix

import (
	"errors"
	"fmt"

	"github.com/ZaguanLabs/xlitfix/script"
)

var (
	// ErrUnsupportedScript is returned when a language tag names a script
	// outside the supported set.
	ErrUnsupportedScript = script.ErrUnsupportedScript

	// ErrUnsupportedLanguage is returned when a language tag is not one of
	// the supported language/script pairs.
	ErrUnsupportedLanguage = script.ErrUnsupportedLanguage

	// ErrNoAlignment is returned when a mixed word has no aligned original token.
	ErrNoAlignment = errors.New("no aligned original token")
)

// BatchDesyncError indicates that splitting a joined batch did not yield one
// segment per sentence.
type BatchDesyncError struct {
	Expected int
	Got      int
}

func (e *BatchDesyncError) Error() string {
	return fmt.Sprintf("batch desync: expected %d segments, got %d", e.Expected, e.Got)
}

// RepairError indicates that mixed-word repair could not be applied to a sentence.
type RepairError struct {
	Sentence string
	Message  string
	Cause    error
}

func (e *RepairError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("repair error: %s", e.Message)
}

func (e *RepairError) Unwrap() error {
	return e.Cause
}

// ModelError indicates a transliteration model failure (API error, rate limit, etc.).
type ModelError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model error: %s", e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // The type of content that failed to process
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates two batches that must be parallel have different lengths.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("count mismatch: expected %d, got %d", e.Expected, e.Got)
}
