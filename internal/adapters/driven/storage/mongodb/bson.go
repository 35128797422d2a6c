package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// documentFrom converts a decoded BSON document into a domain.Document.
func documentFrom(m bson.M) domain.Document {
	doc := make(domain.Document, len(m))
	for k, v := range m {
		doc[k] = plain(v)
	}
	return doc
}

// plain replaces BSON container and scalar types with plain Go values.
func plain(v any) any {
	switch x := v.(type) {
	case primitive.M:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = plain(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case int32:
		return int64(x)
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Decimal128:
		return x.String()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}

// filterOf returns a filter the driver accepts; nil matches everything.
func filterOf(filter map[string]any) any {
	if filter == nil {
		return bson.M{}
	}
	return filter
}

// sortOf converts sort fields into an ordered BSON sort specification.
func sortOf(fields []domain.SortField) bson.D {
	if len(fields) == 0 {
		return nil
	}
	spec := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		spec = append(spec, bson.E{Key: f.Field, Value: dir})
	}
	return spec
}

// nameFilter matches collection names against a regular expression.
func nameFilter(pattern string) bson.M {
	if pattern == "" {
		return bson.M{}
	}
	return bson.M{"name": bson.M{"$regex": pattern}}
}
