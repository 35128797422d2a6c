package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotConnected indicates the database backend has not been configured.
	ErrNotConnected = errors.New("database not connected")

	// Type Conversion Errors.

	// ErrMalformedTypeSignature indicates unbalanced or inconsistent template
	// brackets, or an argument count outside the constructor's arity.
	ErrMalformedTypeSignature = errors.New("malformed type signature")

	// ErrUnsupportedType indicates a type name with no conversion rule.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnknownRing indicates a coefficient ring other than Rational, Integer or Int.
	ErrUnknownRing = errors.New("unknown ring")

	// ErrShapeMismatch indicates raw data whose shape does not fit the type,
	// e.g. ragged matrix rows or a pair with fewer than two elements.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidValue indicates a scalar that cannot be cast to the requested type.
	ErrInvalidValue = errors.New("invalid value")
)
