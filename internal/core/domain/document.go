package domain

import (
	"fmt"
	"strings"
)

const (
	// IDField is the primary key of every stored document.
	IDField = "_id"

	// AttrsField holds per-property metadata of a stored document. For each
	// serialized property it records the type signature under TypeAttr.
	AttrsField = "_attrs"

	// TypeAttr is the key inside an _attrs entry naming the property's type.
	TypeAttr = "_type"
)

// Document is a single polyDB record.
// Values are untyped: scalars, []any and map[string]any exactly as decoded
// from the database. Adapters normalise driver-specific containers before
// handing documents to the core.
type Document map[string]any

// ID returns the document's _id rendered as a string, or "" if it has none.
func (d Document) ID() string {
	id, ok := d[IDField]
	if !ok || id == nil {
		return ""
	}
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}

// Get returns the value at a dot-separated path into nested records.
func (d Document) Get(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		rec, ok := asRecord(cur)
		if !ok {
			return nil, false
		}
		cur, ok = rec[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// TypeOf returns the type signature recorded for field in the document's
// _attrs, if any.
func (d Document) TypeOf(field string) (string, bool) {
	attrs, ok := asRecord(d[AttrsField])
	if !ok {
		return "", false
	}
	entry, ok := asRecord(attrs[field])
	if !ok {
		return "", false
	}
	sig, ok := entry[TypeAttr].(string)
	if !ok || sig == "" {
		return "", false
	}
	return sig, true
}

// Sanitize returns a shallow copy of d without the _attrs metadata.
// A nil document stays nil.
func (d Document) Sanitize() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		if k == AttrsField {
			continue
		}
		out[k] = v
	}
	return out
}

// Fields returns the property names of d, excluding _id and _attrs.
func (d Document) Fields() []string {
	out := make([]string, 0, len(d))
	for k := range d {
		if k == IDField || k == AttrsField {
			continue
		}
		out = append(out, k)
	}
	return out
}

func asRecord(v any) (map[string]any, bool) {
	switch r := v.(type) {
	case map[string]any:
		return r, true
	case Document:
		return r, true
	default:
		return nil, false
	}
}
