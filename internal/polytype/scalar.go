package polytype

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

var (
	errNil         = errors.New("value is null")
	errNotScalar   = errors.New("not a scalar")
	errNotIntegral = errors.New("not an integer")
	errOverflow    = errors.New("out of machine integer range")
	errNotFinite   = errors.New("not a finite number")
)

// convertScalar applies the zero-arity rule for kind to v.
func convertScalar(kind Kind, v any) (any, error) {
	switch kind {
	case KindInt:
		return toInt(v)
	case KindInteger:
		return toInteger(v)
	case KindRational:
		return toRational(v)
	case KindFloat:
		return toFloat(v)
	case KindBool:
		return toBool(v)
	case KindString:
		return toText(v)
	default:
		return nil, fmt.Errorf("%s is not a scalar type", kind)
	}
}

// toRational converts v to an exact rational. Floating point input is read
// through its shortest decimal representation, so 0.1 becomes 1/10.
func toRational(v any) (*big.Rat, error) {
	switch x := v.(type) {
	case nil:
		return nil, errNil
	case *big.Rat:
		return new(big.Rat).Set(x), nil
	case *big.Int:
		return new(big.Rat).SetInt(x), nil
	case float64:
		return floatToRat(x)
	case float32:
		return floatToRat(float64(x))
	case json.Number:
		return parseRat(string(x))
	case string:
		return parseRat(x)
	case bool:
		return nil, errNotScalar
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return new(big.Rat).SetInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Rat).SetInt(new(big.Int).SetUint64(rv.Uint())), nil
	}

	// Driver decimal types (e.g. BSON Decimal128) render as decimal strings.
	if s, ok := v.(fmt.Stringer); ok {
		return parseRat(s.String())
	}
	return nil, errNotScalar
}

// maxExponent bounds decimal exponents so "1e999999999" cannot force a huge
// power of ten.
const maxExponent = 4096

// parseRat reads decimal text only: "a/b" fractions with base-10 parts, or
// decimal numbers such as "-12.5" and "3e-4". Base prefixes are rejected.
func parseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, okNum := new(big.Int).SetString(num, 10)
		q, okDen := new(big.Int).SetString(den, 10)
		if !okNum || !okDen || q.Sign() == 0 {
			return nil, fmt.Errorf("cannot parse %q as a rational number", s)
		}
		return new(big.Rat).SetFrac(n, q), nil
	}

	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return nil, fmt.Errorf("cannot parse %q as a rational number", s)
	}
	return decimalToRat(&d)
}

func floatToRat(f float64) (*big.Rat, error) {
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return nil, err
	}
	return decimalToRat(&d)
}

// decimalToRat converts coefficient * 10^exponent exactly.
func decimalToRat(d *apd.Decimal) (*big.Rat, error) {
	if d.Form != apd.Finite {
		return nil, errNotFinite
	}
	exp := int64(d.Exponent)
	if exp > maxExponent || exp < -maxExponent {
		return nil, fmt.Errorf("exponent %d out of range", exp)
	}

	coeff := d.Coeff.MathBigInt()
	if d.Negative {
		coeff.Neg(coeff)
	}
	r := new(big.Rat).SetInt(coeff)
	if exp == 0 {
		return r, nil
	}
	abs := exp
	if abs < 0 {
		abs = -abs
	}
	pow := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(abs), nil))
	if exp > 0 {
		return r.Mul(r, pow), nil
	}
	return r.Quo(r, pow), nil
}

// toInteger converts v to an arbitrary-precision integer.
func toInteger(v any) (*big.Int, error) {
	switch x := v.(type) {
	case *big.Int:
		return new(big.Int).Set(x), nil
	case string:
		if n, ok := new(big.Int).SetString(strings.TrimSpace(x), 10); ok {
			return n, nil
		}
	case json.Number:
		if n, ok := new(big.Int).SetString(string(x), 10); ok {
			return n, nil
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}

	r, err := toRational(v)
	if err != nil {
		return nil, err
	}
	if !r.IsInt() {
		return nil, errNotIntegral
	}
	return new(big.Int).Set(r.Num()), nil
}

// toInt converts v to a machine integer.
func toInt(v any) (int64, error) {
	if x, ok := v.(int64); ok {
		return x, nil
	}
	n, err := toInteger(v)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, errOverflow
	}
	return n.Int64(), nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f, nil
		}
	case json.Number:
		return x.Float64()
	}
	r, err := toRational(v)
	if err != nil {
		return 0, err
	}
	f, _ := r.Float64()
	return f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, errNil
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	}
	n, err := toInteger(v)
	if err != nil {
		return false, err
	}
	switch {
	case n.Sign() == 0:
		return false, nil
	case n.IsInt64() && n.Int64() == 1:
		return true, nil
	default:
		return false, fmt.Errorf("%s is neither 0 nor 1", n)
	}
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", errNil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case *big.Rat:
		return x.RatString(), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	}
	return "", errNotScalar
}
