package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// ReleaseError is a structured error carrying a code, a human readable message,
// optional key/value context and the underlying cause.
type ReleaseError struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Sentinel values for errors.Is checks. Matching is by code only.
var (
	ErrManifestUnreadable = &ReleaseError{Code: CodeManifestUnreadable}
	ErrNotARepository     = &ReleaseError{Code: CodeNotARepository}
	ErrProtectedBranch    = &ReleaseError{Code: CodeProtectedBranch}
	ErrDirtyWorkingTree   = &ReleaseError{Code: CodeDirtyWorkingTree}
	ErrStepFailed         = &ReleaseError{Code: CodeStepFailed}
	ErrInvalidConfig      = &ReleaseError{Code: CodeInvalidConfig}
)

// Error implements the error interface.
// Format: "[CODE] message (k=v, ...): cause".
func (e *ReleaseError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Code))
	b.WriteString("]")
	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(pairs, ", "))
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ReleaseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ReleaseError with the same code.
func (e *ReleaseError) Is(target error) bool {
	t, ok := target.(*ReleaseError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a ReleaseError with the given code and message.
func New(code ErrorCode, message string) error {
	return &ReleaseError{Code: code, Message: message}
}

// NewWithContext creates a ReleaseError carrying key/value context.
func NewWithContext(code ErrorCode, message string, ctx map[string]any) error {
	return &ReleaseError{Code: code, Message: message, Context: ctx}
}

// Wrap wraps err with a code and message. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &ReleaseError{Code: code, Message: message, Cause: err}
}

// WrapWithContext wraps err with a code, message and key/value context.
// A nil err yields nil.
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]any) error {
	if err == nil {
		return nil
	}
	return &ReleaseError{Code: code, Message: message, Context: ctx, Cause: err}
}

// GetCode returns the code of the outermost ReleaseError in err's chain,
// or CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var re *ReleaseError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return CodeUnknown
}

// Find returns the first ReleaseError with code in err's chain, or nil.
func Find(err error, code ErrorCode) *ReleaseError {
	for err != nil {
		var re *ReleaseError
		if !stderrors.As(err, &re) {
			return nil
		}
		if re.Code == code {
			return re
		}
		err = re.Cause
	}
	return nil
}
