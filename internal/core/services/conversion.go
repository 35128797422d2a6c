package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/logger"
	"github.com/custodia-labs/polydb-cli/internal/polytype"
)

// Ensure ConversionService implements the interface.
var _ driving.ConversionService = (*ConversionService)(nil)

// ConversionService resolves type signatures for document properties and
// converts raw values with the polytype engine.
type ConversionService struct {
	db       driven.Database
	registry driven.TypeRegistry
}

// NewConversionService creates a new conversion service.
// registry may be nil.
func NewConversionService(db driven.Database, registry driven.TypeRegistry) *ConversionService {
	return &ConversionService{db: db, registry: registry}
}

// ConvertValue converts raw according to signature.
func (s *ConversionService) ConvertValue(raw any, signature string, affine bool) (any, error) {
	d, err := polytype.Parse(signature)
	if err != nil {
		return nil, err
	}
	if affine {
		return polytype.ConvertAffine(raw, d)
	}
	return polytype.Convert(raw, d)
}

// ResolveType returns the signature for field of doc: the document's own
// _attrs entry first, then the type registry.
func (s *ConversionService) ResolveType(collection string, doc domain.Document, field string) (string, error) {
	if sig, ok := doc.TypeOf(field); ok {
		logger.Debug("Type of %s from _attrs: %s", field, sig)
		return sig, nil
	}
	if s.registry != nil {
		if sig, ok := s.registry.Lookup(collection, field); ok {
			logger.Debug("Type of %s from registry: %s", field, sig)
			return sig, nil
		}
	}
	return "", fmt.Errorf("type of %s in %s: %w", field, collection, domain.ErrNotFound)
}

// ConvertField loads a document and converts one of its properties.
// An explicit signature in opts takes precedence over type resolution.
func (s *ConversionService) ConvertField(
	ctx context.Context, collection, id, field string, opts driving.ConvertOptions,
) (*driving.ConvertedField, error) {
	doc, err := s.load(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	raw, ok := doc.Get(field)
	if !ok {
		return nil, fmt.Errorf("field %s of %q: %w", field, id, domain.ErrNotFound)
	}

	sig := opts.Signature
	if sig == "" {
		if sig, err = s.ResolveType(collection, doc, field); err != nil {
			return nil, err
		}
	}

	value, err := s.ConvertValue(raw, sig, opts.Affine)
	if err != nil {
		return nil, fmt.Errorf("converting %s as %s: %w", field, sig, err)
	}
	return &driving.ConvertedField{
		Collection: collection,
		ID:         doc.ID(),
		Field:      field,
		Signature:  sig,
		Value:      value,
	}, nil
}

// ConvertDocument loads a document and converts every property whose type
// can be resolved. Properties without a type are listed in Untyped.
func (s *ConversionService) ConvertDocument(
	ctx context.Context, collection, id string,
) (*driving.ConvertedDocument, error) {
	doc, err := s.load(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	out := &driving.ConvertedDocument{
		ID:     doc.ID(),
		Fields: make(map[string]any),
		Types:  make(map[string]string),
	}
	fields := doc.Fields()
	sort.Strings(fields)
	for _, field := range fields {
		sig, err := s.ResolveType(collection, doc, field)
		if errors.Is(err, domain.ErrNotFound) {
			out.Untyped = append(out.Untyped, field)
			continue
		}
		if err != nil {
			return nil, err
		}
		value, err := s.ConvertValue(doc[field], sig, false)
		if err != nil {
			return nil, fmt.Errorf("converting %s as %s: %w", field, sig, err)
		}
		out.Fields[field] = value
		out.Types[field] = sig
	}
	logger.Debug("Converted %d of %d properties of %q", len(out.Fields), len(fields), id)
	return out, nil
}

// ParseType parses and describes a type signature.
func (s *ConversionService) ParseType(signature string) (*driving.TypeInfo, error) {
	d, err := polytype.Parse(signature)
	if err != nil {
		return nil, err
	}
	return describe(d), nil
}

func describe(d *polytype.Descriptor) *driving.TypeInfo {
	info := &driving.TypeInfo{
		Canonical: d.String(),
		Qualified: d.QualifiedString(),
		Kind:      d.Kind.String(),
	}
	for _, a := range d.Args {
		info.Args = append(info.Args, describe(a))
	}
	return info
}

// load fetches the raw document, keeping _attrs for type resolution.
func (s *ConversionService) load(ctx context.Context, collection, id string) (domain.Document, error) {
	if s.db == nil {
		return nil, domain.ErrNotConnected
	}
	if collection == "" || id == "" {
		return nil, fmt.Errorf("%w: collection and id are required", domain.ErrInvalidInput)
	}
	doc, err := s.db.FindOne(ctx, collection, domain.FindOptions{
		Filter: map[string]any{domain.IDField: id},
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("document %q in %s: %w", id, collection, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %q from %s: %w", id, collection, err)
	}
	return doc, nil
}
