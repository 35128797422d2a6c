package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// Apply runs a complete query over docs: filter, sort, skip, limit and
// projection, in that order. The input slice is not modified.
func Apply(docs []domain.Document, opts domain.FindOptions) ([]domain.Document, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	matched := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		ok, err := Match(d, opts.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, d)
		}
	}

	if len(opts.Sort) > 0 {
		Sort(matched, opts.Sort)
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = matched[:0]
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(matched)) {
		matched = matched[:opts.Limit]
	}

	out := make([]domain.Document, len(matched))
	for i, d := range matched {
		p, err := Project(d, opts.Projection)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Sort orders docs in place by the given fields. Missing fields sort as null.
func Sort(docs []domain.Document, fields []domain.SortField) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			a, _ := docs[i].Get(f.Field)
			b, _ := docs[j].Get(f.Field)
			c := Compare(a, b)
			if c == 0 {
				continue
			}
			if f.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Project applies a projection document. In inclusion mode only the named
// paths and _id are kept; in exclusion mode the named paths are dropped.
// _id may be excluded in either mode. Mixing modes is an error.
func Project(doc domain.Document, projection map[string]any) (domain.Document, error) {
	if len(projection) == 0 {
		return copyDocument(doc), nil
	}

	include, exclude := []string{}, []string{}
	keepID, idOnly := true, false
	for path, v := range projection {
		on := truthy(v)
		if path == domain.IDField {
			keepID, idOnly = on, on
			continue
		}
		if on {
			include = append(include, path)
		} else {
			exclude = append(exclude, path)
		}
	}
	if len(include) > 0 && len(exclude) > 0 {
		return nil, fmt.Errorf("%w: projection mixes inclusion and exclusion", domain.ErrInvalidInput)
	}

	if len(include) > 0 || (idOnly && len(exclude) == 0) {
		out := domain.Document{}
		if id, ok := doc[domain.IDField]; ok && keepID {
			out[domain.IDField] = id
		}
		for _, path := range include {
			if v, ok := doc.Get(path); ok {
				setPath(out, path, v)
			}
		}
		return out, nil
	}

	out := copyDocument(doc)
	if !keepID {
		delete(out, domain.IDField)
	}
	for _, path := range exclude {
		deletePath(out, path)
	}
	return out, nil
}

// Distinct returns the distinct values of field among docs matching filter.
// Array values contribute their elements.
func Distinct(docs []domain.Document, field string, filter map[string]any) ([]any, error) {
	var out []any
	add := func(v any) {
		for _, seen := range out {
			if Equal(seen, v) {
				return
			}
		}
		out = append(out, v)
	}
	for _, d := range docs {
		ok, err := Match(d, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, present := d.Get(field)
		if !present {
			continue
		}
		if seq, isSeq := v.([]any); isSeq {
			for _, e := range seq {
				add(e)
			}
			continue
		}
		add(v)
	}
	return out, nil
}

// copyDocument copies nested records so that projections never alias the
// stored document.
func copyDocument(doc domain.Document) domain.Document {
	if doc == nil {
		return nil
	}
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = copyValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = copyValue(e)
		}
		return s
	}
	return v
}

func setPath(doc domain.Document, path string, v any) {
	parts := strings.Split(path, ".")
	cur := map[string]any(doc)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = copyValue(v)
}

func deletePath(doc domain.Document, path string) {
	parts := strings.Split(path, ".")
	cur := map[string]any(doc)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return
		}
		cur = next
	}
	delete(cur, parts[len(parts)-1])
}
