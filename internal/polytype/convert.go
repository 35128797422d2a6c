package polytype

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
)

// Convert reconstructs a typed value from raw document data according to d.
// The result never aliases raw.
func Convert(raw any, d *Descriptor) (any, error) {
	return convert(raw, d, "")
}

// ConvertString parses signature and converts raw with it.
func ConvertString(raw any, signature string) (any, error) {
	d, err := Parse(signature)
	if err != nil {
		return nil, err
	}
	return Convert(raw, d)
}

// ConvertAffine converts raw as a Matrix (or Vector) and drops the leading
// homogenising coordinate: column 0 of a matrix, entry 0 of a vector.
func ConvertAffine(raw any, d *Descriptor) (any, error) {
	if d.Kind != KindMatrix && d.Kind != KindVector {
		return nil, &UnsupportedTypeError{Name: d.Name}
	}
	v, err := Convert(raw, d)
	if err != nil {
		return nil, err
	}

	var dropErr error
	switch m := v.(type) {
	case *Matrix[int64]:
		v, dropErr = m.DropFirstColumn()
	case *Matrix[*big.Int]:
		v, dropErr = m.DropFirstColumn()
	case *Matrix[*big.Rat]:
		v, dropErr = m.DropFirstColumn()
	case Vector[int64]:
		v, dropErr = dropFirst(m)
	case Vector[*big.Int]:
		v, dropErr = dropFirst(m)
	case Vector[*big.Rat]:
		v, dropErr = dropFirst(m)
	}
	if dropErr != nil {
		return nil, &ShapeError{Signature: d.String(), Reason: dropErr.Error()}
	}
	return v, nil
}

func dropFirst[T Element](v Vector[T]) (Vector[T], error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("vector has no coordinate to drop")
	}
	return v.DropFirst(), nil
}

func convert(raw any, d *Descriptor, path string) (any, error) {
	switch d.Kind {
	case KindInt, KindInteger, KindRational, KindFloat, KindBool, KindString:
		v, err := convertScalar(d.Kind, raw)
		if err != nil {
			return nil, &ValueError{Kind: d.Kind, Value: raw, Path: path, Err: err}
		}
		return v, nil
	case KindVector:
		return convertVector(raw, d, path)
	case KindMatrix:
		return convertMatrix(raw, d, path)
	case KindArray:
		return convertArray(raw, d, path)
	case KindSet:
		return convertSet(raw, d, path)
	case KindMap:
		return convertMap(raw, d, path)
	case KindPair:
		return convertPair(raw, d, path)
	case KindIncidenceMatrix:
		return convertIncidence(raw, d, path)
	case KindSerialized:
		return convert(raw, d.Args[0], path)
	default:
		return nil, &UnsupportedTypeError{Name: d.Name, Path: path}
	}
}

func ringOf(d *Descriptor) (Kind, error) {
	ring := d.Arg(0)
	if ring == nil || !ring.Kind.IsRing() {
		name := "<none>"
		if ring != nil {
			name = ring.String()
		}
		return KindUnknown, &RingError{Ring: name, Signature: d.String()}
	}
	return ring.Kind, nil
}

func convertVector(raw any, d *Descriptor, path string) (any, error) {
	ring, err := ringOf(d)
	if err != nil {
		return nil, err
	}
	seq, ok := asSequence(raw)
	if !ok {
		return nil, shapef(d, path, "expected a sequence, got %T", raw)
	}
	switch ring {
	case KindInt:
		return vectorOf(seq, toInt, ring, path)
	case KindInteger:
		return vectorOf(seq, toInteger, ring, path)
	default:
		return vectorOf(seq, toRational, ring, path)
	}
}

func vectorOf[T Element](seq []any, conv func(any) (T, error), ring Kind, path string) (Vector[T], error) {
	out := make(Vector[T], len(seq))
	for i, e := range seq {
		x, err := conv(e)
		if err != nil {
			return nil, &ValueError{Kind: ring, Value: e, Path: index(path, i), Err: err}
		}
		out[i] = x
	}
	return out, nil
}

func convertMatrix(raw any, d *Descriptor, path string) (any, error) {
	ring, err := ringOf(d)
	if err != nil {
		return nil, err
	}
	seq, ok := asSequence(raw)
	if !ok {
		return nil, shapef(d, path, "expected a sequence of rows, got %T", raw)
	}

	// An empty matrix may carry its width in a trailing {"cols": n} record.
	cols := -1
	if n := len(seq); n > 0 {
		if rec, ok := asRecord(seq[n-1]); ok {
			c, err := toInt(rec["cols"])
			if err != nil {
				return nil, shapef(d, index(path, n-1), "invalid cols record: %v", err)
			}
			cols = int(c)
			seq = seq[:n-1]
		}
	}

	rows := make([][]any, len(seq))
	for i, r := range seq {
		row, ok := asSequence(r)
		if !ok {
			return nil, shapef(d, index(path, i), "expected a row sequence, got %T", r)
		}
		if cols < 0 {
			cols = len(row)
		}
		if len(row) != cols {
			return nil, shapef(d, index(path, i), "row has %d entries, expected %d", len(row), cols)
		}
		rows[i] = row
	}
	if cols < 0 {
		cols = 0
	}

	switch ring {
	case KindInt:
		return matrixOf(rows, cols, toInt, ring, path)
	case KindInteger:
		return matrixOf(rows, cols, toInteger, ring, path)
	default:
		return matrixOf(rows, cols, toRational, ring, path)
	}
}

func matrixOf[T Element](rows [][]any, cols int, conv func(any) (T, error), ring Kind, path string) (*Matrix[T], error) {
	data := make([]T, 0, len(rows)*cols)
	for i, row := range rows {
		for j, e := range row {
			x, err := conv(e)
			if err != nil {
				return nil, &ValueError{Kind: ring, Value: e, Path: index(index(path, i), j), Err: err}
			}
			data = append(data, x)
		}
	}
	return NewMatrix(len(rows), cols, data)
}

func convertArray(raw any, d *Descriptor, path string) (any, error) {
	seq, ok := asSequence(raw)
	if !ok {
		return nil, shapef(d, path, "expected a sequence, got %T", raw)
	}
	out := make([]any, len(seq))
	for i, e := range seq {
		v, err := convert(e, d.Args[0], index(path, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func convertSet(raw any, d *Descriptor, path string) (any, error) {
	seq, ok := asSequence(raw)
	if !ok {
		return nil, shapef(d, path, "expected a sequence, got %T", raw)
	}
	set := NewSet()
	for i, e := range seq {
		v, err := convert(e, d.Args[0], index(path, i))
		if err != nil {
			return nil, err
		}
		set.Add(v)
	}
	return set, nil
}

func convertMap(raw any, d *Descriptor, path string) (any, error) {
	keyType, valType := d.Args[0], d.Args[1]
	out := NewMap()

	// Maps with string-like keys may be stored as a plain record.
	if rec, ok := asRecord(raw); ok {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p := path + "." + k
			kv, err := convert(k, keyType, p)
			if err != nil {
				return nil, err
			}
			vv, err := convert(rec[k], valType, p)
			if err != nil {
				return nil, err
			}
			out.Put(kv, vv)
		}
		return out, nil
	}

	seq, ok := asSequence(raw)
	if !ok {
		return nil, shapef(d, path, "expected a sequence of pairs, got %T", raw)
	}
	for i, e := range seq {
		p := index(path, i)
		pair, ok := asSequence(e)
		if !ok || len(pair) != 2 {
			return nil, shapef(d, p, "map entry must be a two-element sequence")
		}
		kv, err := convert(pair[0], keyType, index(p, 0))
		if err != nil {
			return nil, err
		}
		vv, err := convert(pair[1], valType, index(p, 1))
		if err != nil {
			return nil, err
		}
		out.Put(kv, vv)
	}
	return out, nil
}

func convertPair(raw any, d *Descriptor, path string) (any, error) {
	seq, ok := asSequence(raw)
	if !ok || len(seq) != 2 {
		return nil, shapef(d, path, "pair must be a two-element sequence")
	}
	first, err := convert(seq[0], d.Args[0], index(path, 0))
	if err != nil {
		return nil, err
	}
	second, err := convert(seq[1], d.Args[1], index(path, 1))
	if err != nil {
		return nil, err
	}
	return Pair{First: first, Second: second}, nil
}

func convertIncidence(raw any, d *Descriptor, path string) (any, error) {
	seq, ok := asSequence(raw)
	if !ok || len(seq) == 0 {
		return nil, shapef(d, path, "expected rows followed by a {\"cols\": n} record")
	}
	last := len(seq) - 1
	rec, ok := asRecord(seq[last])
	if !ok {
		return nil, shapef(d, index(path, last), "last element must be a {\"cols\": n} record, got %T", seq[last])
	}
	cols, err := toInt(rec["cols"])
	if err != nil {
		return nil, &ValueError{Kind: KindInt, Value: rec["cols"], Path: index(path, last) + ".cols", Err: err}
	}

	rows := make([][]int, last)
	for i, r := range seq[:last] {
		elems, ok := asSequence(r)
		if !ok {
			return nil, shapef(d, index(path, i), "expected a row of column indices, got %T", r)
		}
		row := make([]int, len(elems))
		for j, e := range elems {
			c, err := toInt(e)
			if err != nil {
				return nil, &ValueError{Kind: KindInt, Value: e, Path: index(index(path, i), j), Err: err}
			}
			row[j] = int(c)
		}
		rows[i] = row
	}

	m, err := NewIncidenceMatrix(int(cols), rows)
	if err != nil {
		return nil, shapef(d, path, "%v", err)
	}
	return m, nil
}

func shapef(d *Descriptor, path, format string, args ...any) error {
	return &ShapeError{Signature: d.String(), Path: path, Reason: fmt.Sprintf(format, args...)}
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

// asSequence returns the elements of any slice or array value, including
// driver-specific named slice types.
func asSequence(raw any) ([]any, bool) {
	if seq, ok := raw.([]any); ok {
		return seq, true
	}
	if raw == nil {
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asRecord returns the fields of any string-keyed map value.
func asRecord(raw any) (map[string]any, bool) {
	if rec, ok := raw.(map[string]any); ok {
		return rec, true
	}
	if raw == nil {
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
