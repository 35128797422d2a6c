package driving

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// ConversionService turns untyped document values into typed mathematical
// objects.
type ConversionService interface {
	// ConvertValue converts raw according to signature.
	ConvertValue(raw any, signature string, affine bool) (any, error)

	// ConvertField loads a document and converts one of its properties.
	ConvertField(ctx context.Context, collection, id, field string, opts ConvertOptions) (*ConvertedField, error)

	// ConvertDocument loads a document and converts every property whose
	// type can be resolved.
	ConvertDocument(ctx context.Context, collection, id string) (*ConvertedDocument, error)

	// ResolveType returns the signature for field of doc.
	// Returns domain.ErrNotFound if no type is known.
	ResolveType(collection string, doc domain.Document, field string) (string, error)

	// ParseType parses and describes a type signature.
	ParseType(signature string) (*TypeInfo, error)
}

// ConvertOptions controls a single field conversion.
type ConvertOptions struct {
	// Signature overrides type resolution when non-empty.
	Signature string

	// Affine drops the homogenizing first coordinate of matrices and vectors.
	Affine bool
}

// ConvertedField is a converted document property.
type ConvertedField struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Field      string `json:"field"`
	Signature  string `json:"type"`
	Value      any    `json:"value"`
}

// ConvertedDocument is a document whose typed properties were converted.
type ConvertedDocument struct {
	ID string `json:"id"`

	// Fields holds converted values of typed properties.
	Fields map[string]any `json:"fields"`

	// Types holds the signature used for each converted property.
	Types map[string]string `json:"types"`

	// Untyped lists properties left out because no type was known.
	Untyped []string `json:"untyped,omitempty"`
}

// TypeInfo describes a parsed type signature.
type TypeInfo struct {
	Canonical string      `json:"canonical"`
	Qualified string      `json:"qualified"`
	Kind      string      `json:"kind"`
	Args      []*TypeInfo `json:"args,omitempty"`
}
