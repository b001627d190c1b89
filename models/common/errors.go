package common

import (
	"fmt"
	"strings"

	"github.com/CatchLog/harvest-services/constants"
)

type DetailedError interface {
	Detail() string
}

// SubmissionError is a classified error from a remote write path.
// Class is one of the constants.ErrClass* values and drives routing:
// authorization failures fall through to the anonymous path,
// connectivity failures defer locally, conflicts surface immediately.
type SubmissionError struct {
	Err     error
	Class   string
	Code    string
	Message string
}

func NewSubmissionError(class, code, message string, err error) *SubmissionError {
	return &SubmissionError{
		Err:     err,
		Class:   class,
		Code:    code,
		Message: message,
	}
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf("(Underlying error: %s)", e.Err.Error())
	}
	return fmt.Sprintf("[%s/%s] %s %s", e.Class, e.Code, e.Message, underlyingError)
}

// IsAuthorization returns true if err is an authorization-class
// SubmissionError.
func IsAuthorization(err error) bool {
	return errClass(err) == constants.ErrClassAuthorization
}

// IsConnectivity returns true if err is a connectivity-class
// SubmissionError.
func IsConnectivity(err error) bool {
	return errClass(err) == constants.ErrClassConnectivity
}

// IsConflict returns true if err is a data-conflict or validation
// SubmissionError.
func IsConflict(err error) bool {
	return errClass(err) == constants.ErrClassConflict
}

func errClass(err error) string {
	if subErr, ok := err.(*SubmissionError); ok {
		return subErr.Class
	}
	return ""
}

// Structured codes the backend procedures return. When a code is
// present it is authoritative; the message is only inspected when the
// backend sent no code at all.
var codeClasses = map[string]string{
	"session_expired":  constants.ErrClassAuthorization,
	"session_invalid":  constants.ErrClassAuthorization,
	"unauthorized":     constants.ErrClassAuthorization,
	"unique_violation": constants.ErrClassConflict,
	"validation":       constants.ErrClassConflict,
	"conflict":         constants.ErrClassConflict,
	"unreachable":      constants.ErrClassConnectivity,
	"timeout":          constants.ErrClassConnectivity,
}

var authSubstrings = []string{
	"unauthorized", "expired", "invalid session", "not logged in",
	"authentication", "forbidden",
}

var conflictSubstrings = []string{
	"already exists", "duplicate", "unique constraint", "validation failed",
}

// ClassifyRemoteFailure maps a backend failure to an error class.
//
// The substring fallback is a known weakness inherited from the
// procedures that return bare messages; prefer fixing those to return
// codes over extending these lists.
func ClassifyRemoteFailure(code, message string, err error) *SubmissionError {
	if class, ok := codeClasses[code]; ok {
		return NewSubmissionError(class, code, message, err)
	}
	lower := strings.ToLower(message)
	for _, s := range authSubstrings {
		if strings.Contains(lower, s) {
			return NewSubmissionError(constants.ErrClassAuthorization, code, message, err)
		}
	}
	for _, s := range conflictSubstrings {
		if strings.Contains(lower, s) {
			return NewSubmissionError(constants.ErrClassConflict, code, message, err)
		}
	}
	return NewSubmissionError(constants.ErrClassUnknown, code, message, err)
}

// NewConnectivityError wraps a transport-level failure (no response
// at all) as a connectivity-class error.
func NewConnectivityError(message string, err error) *SubmissionError {
	return NewSubmissionError(constants.ErrClassConnectivity, "unreachable", message, err)
}
