package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies container failures.
type ErrorCode uint8

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeMissingRequiredDependency
	ErrCodeNoActiveContext
	ErrCodeUnsupportedScope
	ErrCodeUndeclaredType
	ErrCodeTypeMismatch
	ErrCodeConstructionFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                   "UNKNOWN",
	ErrCodeMissingRequiredDependency: "MISSING_REQUIRED_DEPENDENCY",
	ErrCodeNoActiveContext:           "NO_ACTIVE_CONTEXT",
	ErrCodeUnsupportedScope:          "UNSUPPORTED_SCOPE",
	ErrCodeUndeclaredType:            "UNDECLARED_TYPE",
	ErrCodeTypeMismatch:              "TYPE_MISMATCH",
	ErrCodeConstructionFailed:        "CONSTRUCTION_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the single error type returned by the container.
// Compare with errors.Is against the Err* sentinels; only Code is compared.
type Error struct {
	Code      ErrorCode
	Message   string
	Type      string // component type involved, if any
	Qualifier string
	Field     string // Owner.Field for dependency failures
	Cause     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("container: [")
	b.WriteString(e.Code.String())
	b.WriteString("]")
	if e.Type != "" {
		fmt.Fprintf(&b, " type=%s", e.Type)
	}
	if e.Qualifier != "" {
		fmt.Fprintf(&b, " qualifier=%q", e.Qualifier)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field=%s", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is.
var (
	ErrMissingRequiredDependency = &Error{Code: ErrCodeMissingRequiredDependency}
	ErrNoActiveContext           = &Error{Code: ErrCodeNoActiveContext}
	ErrUnsupportedScope          = &Error{Code: ErrCodeUnsupportedScope}
	ErrUndeclaredType            = &Error{Code: ErrCodeUndeclaredType}
	ErrTypeMismatch              = &Error{Code: ErrCodeTypeMismatch}
	ErrConstructionFailed        = &Error{Code: ErrCodeConstructionFailed}
)

func errMissingDependency(dep, qualifier, field string) *Error {
	return &Error{
		Code:      ErrCodeMissingRequiredDependency,
		Message:   fmt.Sprintf("no registered instance of %s for %s", dep, field),
		Type:      dep,
		Qualifier: qualifier,
		Field:     field,
	}
}

func errNoActiveContext(typ string) *Error {
	return &Error{
		Code:    ErrCodeNoActiveContext,
		Message: "request-scoped component used outside RunInNewContext / WithRequestScope",
		Type:    typ,
	}
}

func errUnsupportedScope(typ string, s Scope) *Error {
	return &Error{
		Code:    ErrCodeUnsupportedScope,
		Message: fmt.Sprintf("unsupported scope %s", s),
		Type:    typ,
	}
}

func errUndeclared(typ string) *Error {
	return &Error{
		Code:    ErrCodeUndeclaredType,
		Message: "type was never declared; call container.Declare first",
		Type:    typ,
	}
}

func errConstruction(typ, qualifier string, cause error) *Error {
	return &Error{
		Code:      ErrCodeConstructionFailed,
		Message:   "factory returned an error",
		Type:      typ,
		Qualifier: qualifier,
		Cause:     cause,
	}
}

// IsMissingDependency reports whether err is a MissingRequiredDependency failure.
func IsMissingDependency(err error) bool { return errors.Is(err, ErrMissingRequiredDependency) }

// IsNoActiveContext reports whether err is a NoActiveContext failure.
func IsNoActiveContext(err error) bool { return errors.Is(err, ErrNoActiveContext) }

// IsUnsupportedScope reports whether err is an UnsupportedScope failure.
func IsUnsupportedScope(err error) bool { return errors.Is(err, ErrUnsupportedScope) }
