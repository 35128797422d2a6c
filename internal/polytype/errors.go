package polytype

import (
	"fmt"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// SignatureError reports a type signature that could not be parsed.
type SignatureError struct {
	Signature string
	Offset    int
	Reason    string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: %q at offset %d: %s",
		domain.ErrMalformedTypeSignature, e.Signature, e.Offset, e.Reason)
}

// Unwrap returns domain.ErrMalformedTypeSignature.
func (e *SignatureError) Unwrap() error { return domain.ErrMalformedTypeSignature }

// UnsupportedTypeError reports a type name with no conversion rule.
type UnsupportedTypeError struct {
	Name string
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s %q%s", domain.ErrUnsupportedType, e.Name, at(e.Path))
}

// Unwrap returns domain.ErrUnsupportedType.
func (e *UnsupportedTypeError) Unwrap() error { return domain.ErrUnsupportedType }

// RingError reports a coefficient ring that is not Rational, Integer or Int.
type RingError struct {
	Ring      string
	Signature string
}

func (e *RingError) Error() string {
	return fmt.Sprintf("%s %q in %s", domain.ErrUnknownRing, e.Ring, e.Signature)
}

// Unwrap returns domain.ErrUnknownRing.
func (e *RingError) Unwrap() error { return domain.ErrUnknownRing }

// ShapeError reports raw data whose nesting or length does not fit the type.
type ShapeError struct {
	Signature string
	Path      string
	Reason    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s for %s%s: %s", domain.ErrShapeMismatch, e.Signature, at(e.Path), e.Reason)
}

// Unwrap returns domain.ErrShapeMismatch.
func (e *ShapeError) Unwrap() error { return domain.ErrShapeMismatch }

// ValueError reports a scalar that cannot be cast to the requested type.
type ValueError struct {
	Kind  Kind
	Value any
	Path  string
	Err   error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("%s: cannot convert %T(%v) to %s%s", domain.ErrInvalidValue, e.Value, e.Value, e.Kind, at(e.Path))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns domain.ErrInvalidValue.
func (e *ValueError) Unwrap() error { return domain.ErrInvalidValue }

func at(path string) string {
	if path == "" {
		return ""
	}
	return " at " + path
}
