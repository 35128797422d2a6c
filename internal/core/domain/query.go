package domain

import (
	"fmt"
	"strings"
)

// SortField orders query results by one property.
type SortField struct {
	// Field is the (possibly dotted) property name.
	Field string

	// Descending reverses the natural order.
	Descending bool
}

// FindOptions controls a query against a collection.
// The zero value matches every document in natural order.
type FindOptions struct {
	// Filter is a MongoDB-style filter document.
	Filter map[string]any

	// Sort fixes the result order. Earlier fields take precedence.
	Sort []SortField

	// Projection selects or excludes properties, e.g. {"_id": 1}.
	Projection map[string]any

	// Skip drops this many documents from the start of the result set.
	Skip int64

	// Limit caps the number of results. Zero means no limit.
	Limit int64

	// BatchSize is how many documents each round trip fetches. Zero lets the
	// backend decide.
	BatchSize int32
}

// Validate checks the numeric bounds.
func (o FindOptions) Validate() error {
	if o.Skip < 0 {
		return fmt.Errorf("%w: negative skip %d", ErrInvalidInput, o.Skip)
	}
	if o.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidInput, o.Limit)
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("%w: negative batch size %d", ErrInvalidInput, o.BatchSize)
	}
	return nil
}

// ParseSort parses a comma-separated sort specification such as
// "DIM,-N_VERTICES". A leading '-' sorts descending, a leading '+' is allowed.
func ParseSort(expr string) ([]SortField, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	parts := strings.Split(expr, ",")
	out := make([]SortField, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		f := SortField{Field: p}
		switch {
		case strings.HasPrefix(p, "-"):
			f = SortField{Field: p[1:], Descending: true}
		case strings.HasPrefix(p, "+"):
			f.Field = p[1:]
		}
		if f.Field == "" {
			return nil, fmt.Errorf("%w: empty sort field in %q", ErrInvalidInput, expr)
		}
		out = append(out, f)
	}
	return out, nil
}
