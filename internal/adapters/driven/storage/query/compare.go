package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// num is a numeric document value.
type num struct {
	isInt bool
	i     int64
	f     float64
}

func number(v any) (num, bool) {
	switch x := v.(type) {
	case int:
		return num{isInt: true, i: int64(x)}, true
	case int32:
		return num{isInt: true, i: int64(x)}, true
	case int64:
		return num{isInt: true, i: x}, true
	case float32:
		return num{f: float64(x)}, true
	case float64:
		return num{f: x}, true
	case json.Number:
		if i, err := strconv.ParseInt(string(x), 10, 64); err == nil {
			return num{isInt: true, i: i}, true
		}
		if f, err := x.Float64(); err == nil {
			return num{f: f}, true
		}
	}
	return num{}, false
}

func (n num) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

func (n num) isZero() bool {
	if n.isInt {
		return n.i == 0
	}
	return n.f == 0
}

func (n num) cmp(o num) int {
	if n.isInt && o.isInt {
		switch {
		case n.i < o.i:
			return -1
		case n.i > o.i:
			return 1
		}
		return 0
	}
	a, b := n.float(), o.float()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	case math.IsNaN(a) && !math.IsNaN(b):
		return -1
	case !math.IsNaN(a) && math.IsNaN(b):
		return 1
	}
	return 0
}

// compareOrdered compares two values of the same class for range operators.
func compareOrdered(a, b any) (int, bool) {
	if na, ok := number(a); ok {
		if nb, ok := number(b); ok {
			return na.cmp(nb), true
		}
		return 0, false
	}
	sa, ok := a.(string)
	if !ok {
		return 0, false
	}
	sb, ok := b.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

// class ranks values of different types the way MongoDB sorts them.
func class(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 2
	case map[string]any:
		return 3
	case []any:
		return 4
	case bool:
		return 5
	}
	if _, ok := number(v); ok {
		return 1
	}
	return 6
}

// Compare orders two document values: null < numbers < strings < documents
// < arrays < booleans. It returns -1, 0 or +1.
func Compare(a, b any) int {
	ca, cb := class(a), class(b)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}
	switch ca {
	case 1, 2:
		c, _ := compareOrdered(a, b)
		return c
	case 4:
		x, y := a.([]any), b.([]any)
		for i := 0; i < len(x) && i < len(y); i++ {
			if c := Compare(x[i], y[i]); c != 0 {
				return c
			}
		}
		return compareInts(len(x), len(y))
	case 5:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return 0
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
