package types

import (
	"errors"
	"fmt"
)

// ErrKind classifies a validation failure so callers can branch on intent
// rather than parsing messages, mirroring the error taxonomy of takane's
// validation contract: structural, value, version, dispatch, or an error
// propagated unmodified from an external collaborator.
type ErrKind int

const (
	ErrKindStructure ErrKind = iota
	ErrKindValue
	ErrKindVersion
	ErrKindDispatch
	ErrKindPropagated
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindStructure:
		return "StructureError"
	case ErrKindValue:
		return "ValueError"
	case ErrKindVersion:
		return "VersionError"
	case ErrKindDispatch:
		return "DispatchError"
	case ErrKindPropagated:
		return "PropagatedError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type surfaced to callers of Validate/Height/
// Dimensions. Every enclosing validator prefixes the innermost cause with
// its own type and path, so a caller sees one error carrying the full
// context chain.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + "; " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a leaf error of the given kind.
func NewError(kind ErrKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an error of the given kind around an existing cause.
func WrapError(kind ErrKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// WrapContext wraps err with the standard per-validator context prefix:
// "failed to validate '<type>' object at '<path>'; <inner>". It is applied
// by every enclosing validator, per the dispatcher's error-wrapping policy.
func WrapContext(typeName, path string, err error) error {
	if err == nil {
		return nil
	}
	kind := ErrKindPropagated
	var te *Error
	if errors.As(err, &te) {
		kind = te.Kind
	}
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf("failed to validate '%s' object at '%s'", typeName, path),
		Err:  err,
	}
}
