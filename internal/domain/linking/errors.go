package linking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes link-resolution failure semantics across layers.
type ErrorCode string

const (
	// CodeDictionaryUnavailable means the snapshot's backing store cannot be
	// reached. Resolution recovers locally by degrading to heading-only links.
	CodeDictionaryUnavailable ErrorCode = "dictionary_unavailable"
	// CodeInvalidOverride means an override row mixes type and payload
	// (custom_title without a title, or disabled with one). Rejected at write time.
	CodeInvalidOverride ErrorCode = "invalid_override"
	// CodeStaleSnapshot means an edge-cache entry carries an older version than
	// the authoritative snapshot. Treated as a cache miss, never surfaced.
	CodeStaleSnapshot ErrorCode = "stale_snapshot"
	// CodeMalformedContent means heading markers expected by stored HeadingLinks
	// were not found. Resolution proceeds with whatever headings matched.
	CodeMalformedContent ErrorCode = "malformed_content"

	CodeValidation ErrorCode = "validation"
	CodeNotFound   ErrorCode = "not_found"
	CodeConflict   ErrorCode = "conflict"
	CodeRetryable  ErrorCode = "retryable"
	CodeInternal   ErrorCode = "internal"
)

// Error is the canonical error wrapper for the linking core.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a linking error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an error with a code and operation. An error that already
// carries a code passes through untouched, so the code assigned closest to
// the failure wins; use NewError to deliberately recode.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	var lErr *Error
	if errors.As(err, &lErr) {
		return err
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var lErr *Error
	if !errors.As(err, &lErr) {
		return false
	}
	return lErr.Code == code
}

// CodeOf extracts the error code, defaulting to internal for uncoded errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var lErr *Error
	if !errors.As(err, &lErr) {
		return CodeInternal
	}
	return lErr.Code
}
