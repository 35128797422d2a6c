// Package query evaluates MongoDB-style filters, sorts and projections
// against in-process documents. It backs the stores that hold documents
// locally: the in-memory database and the SQLite mirror.
package query

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// ErrUnsupportedOperator is returned for filter operators with no local
// implementation.
var ErrUnsupportedOperator = errors.New("unsupported query operator")

// Match reports whether doc satisfies filter. A nil filter matches all.
func Match(doc domain.Document, filter map[string]any) (bool, error) {
	for key, cond := range filter {
		ok, err := matchKey(doc, key, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(doc domain.Document, key string, cond any) (bool, error) {
	switch key {
	case "$and", "$or", "$nor":
		clauses, ok := cond.([]any)
		if !ok {
			return false, fmt.Errorf("%w: %s needs an array", domain.ErrInvalidInput, key)
		}
		return matchLogical(doc, key, clauses)
	}
	if strings.HasPrefix(key, "$") {
		return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, key)
	}

	value, present := doc.Get(key)
	if ops, ok := operatorRecord(cond); ok {
		for op, arg := range ops {
			ok, err := matchOperator(value, present, op, arg, ops)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	return present && equalsOrContains(value, cond), nil
}

func matchLogical(doc domain.Document, op string, clauses []any) (bool, error) {
	for _, c := range clauses {
		sub, ok := c.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: %s clause must be a document", domain.ErrInvalidInput, op)
		}
		ok, err := Match(doc, sub)
		if err != nil {
			return false, err
		}
		switch {
		case op == "$and" && !ok:
			return false, nil
		case op == "$or" && ok:
			return true, nil
		case op == "$nor" && ok:
			return false, nil
		}
	}
	return op != "$or", nil
}

func matchOperator(value any, present bool, op string, arg any, ops map[string]any) (bool, error) {
	switch op {
	case "$eq":
		return present && equalsOrContains(value, arg), nil
	case "$ne":
		return !present || !equalsOrContains(value, arg), nil
	case "$gt", "$gte", "$lt", "$lte":
		if !present {
			return false, nil
		}
		c, ok := compareOrdered(value, arg)
		if !ok {
			return false, nil
		}
		switch op {
		case "$gt":
			return c > 0, nil
		case "$gte":
			return c >= 0, nil
		case "$lt":
			return c < 0, nil
		default:
			return c <= 0, nil
		}
	case "$in", "$nin":
		list, ok := arg.([]any)
		if !ok {
			return false, fmt.Errorf("%w: %s needs an array", domain.ErrInvalidInput, op)
		}
		found := false
		for _, candidate := range list {
			if present && equalsOrContains(value, candidate) {
				found = true
				break
			}
		}
		return found == (op == "$in"), nil
	case "$exists":
		want, ok := arg.(bool)
		if !ok {
			want = truthy(arg)
		}
		return present == want, nil
	case "$regex":
		opts, _ := ops["$options"].(string)
		return matchRegex(value, present, arg, opts)
	case "$options":
		return true, nil
	case "$size":
		n, ok := asInt(arg)
		if !ok {
			return false, fmt.Errorf("%w: $size needs an integer", domain.ErrInvalidInput)
		}
		seq, ok := value.([]any)
		return ok && len(seq) == n, nil
	case "$not":
		sub, ok := operatorRecord(arg)
		if !ok {
			return false, fmt.Errorf("%w: $not needs an operator document", domain.ErrInvalidInput)
		}
		for subOp, subArg := range sub {
			ok, err := matchOperator(value, present, subOp, subArg, sub)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
	}
}

func matchRegex(value any, present bool, arg any, opts string) (bool, error) {
	pattern, ok := arg.(string)
	if !ok {
		return false, fmt.Errorf("%w: $regex needs a string", domain.ErrInvalidInput)
	}
	if strings.Contains(opts, "i") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !present {
		return false, nil
	}
	switch v := value.(type) {
	case string:
		return re.MatchString(v), nil
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && re.MatchString(s) {
				return true, nil
			}
		}
	}
	return false, nil
}

// operatorRecord returns cond as an operator document ({"$gt": 3}).
func operatorRecord(cond any) (map[string]any, bool) {
	rec, ok := cond.(map[string]any)
	if !ok || len(rec) == 0 {
		return nil, false
	}
	for k := range rec {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return rec, true
}

// equalsOrContains follows MongoDB semantics: a scalar condition on an array
// field matches if any element equals it.
func equalsOrContains(value, cond any) bool {
	if Equal(value, cond) {
		return true
	}
	if seq, ok := value.([]any); ok {
		if _, condIsSeq := cond.([]any); !condIsSeq {
			for _, e := range seq {
				if Equal(e, cond) {
					return true
				}
			}
		}
	}
	return false
}

// Equal compares two document values. Numbers compare by value regardless
// of their Go type.
func Equal(a, b any) bool {
	if na, ok := number(a); ok {
		if nb, ok := number(b); ok {
			return na.cmp(nb) == 0
		}
		return false
	}
	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	}
	if n, ok := number(v); ok {
		return !n.isZero()
	}
	return true
}

func asInt(v any) (int, bool) {
	n, ok := number(v)
	if !ok || !n.isInt {
		return 0, false
	}
	return int(n.i), true
}
