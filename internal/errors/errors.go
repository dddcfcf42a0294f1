package errors

import (
	"errors"
	"fmt"
)

type Category string

const (
	CategoryInvalidInput      Category = "invalid_input"
	CategoryExtractionFailure Category = "extraction_failure"
	CategorySessionState      Category = "session_state"
	CategoryOracleFailure     Category = "oracle_failure"
	CategoryIOFailure         Category = "io_failure"
)

// Codes used across packages.
const (
	CodeNoDocuments        = "no_documents"
	CodeUnknownSource      = "unknown_source"
	CodeUnsupportedFile    = "unsupported_file"
	CodeSessionNotFound    = "session_not_found"
	CodeSessionClosed      = "session_closed"
	CodeInvalidSession     = "invalid_session"
	CodeSessionWriteFailed = "session_write_failed"
	CodeInvalidRole        = "invalid_role"
	CodeOracleDisabled     = "oracle_disabled"
	CodeOracleResponse     = "oracle_bad_response"
	CodeOracleRequest      = "oracle_request_failed"
	CodeDuplicateSource    = "duplicate_source"
	CodeMissingCase        = "missing_case"
	CodeInvalidManifest    = "invalid_manifest"
)

type classifiedError struct {
	category Category
	code     string
	hint     string
	cause    error
}

func (e *classifiedError) Error() string {
	if e.cause == nil {
		return "unknown error"
	}
	return e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

func Wrap(cause error, category Category, code, hint string) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{
		category: category,
		code:     code,
		hint:     hint,
		cause:    cause,
	}
}

// Input reports a structural problem with caller-supplied input.
func Input(code, format string, args ...any) error {
	return Wrap(fmt.Errorf(format, args...), CategoryInvalidInput, code, "")
}

// SessionState reports a mutation attempted on a session in the wrong state.
func SessionState(sessionID, op string) error {
	return Wrap(
		fmt.Errorf("session %s is closed: %s rejected", sessionID, op),
		CategorySessionState,
		CodeSessionClosed,
		"start a new session",
	)
}

func CategoryOf(err error) Category {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.category
	}
	return ""
}

func CodeOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.code
	}
	return ""
}

func HintOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.hint
	}
	return ""
}

func IsInput(err error) bool {
	return CategoryOf(err) == CategoryInvalidInput
}

func IsSessionState(err error) bool {
	return CategoryOf(err) == CategorySessionState
}
