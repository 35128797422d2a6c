package polytype

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Element is a coefficient of a vector or matrix: a machine integer, an
// arbitrary-precision integer or an exact rational.
type Element interface {
	int64 | *big.Int | *big.Rat
}

// keyer is implemented by composite values that can be set elements or map keys.
type keyer interface {
	key() string
}

// Key returns a canonical string for v. Values of the same type are equal
// exactly when their keys are equal.
func Key(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case keyer:
		return x.key()
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return strconv.Quote(x)
	case *big.Int:
		return x.String()
	case *big.Rat:
		return x.RatString()
	case []any:
		return Tuple(x).key()
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func elemString[T Element](x T) string {
	switch v := any(x).(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case *big.Int:
		return v.String()
	case *big.Rat:
		return v.RatString()
	}
	return ""
}

// Vector is a dense vector over a ring.
type Vector[T Element] []T

// Len returns the dimension.
func (v Vector[T]) Len() int { return len(v) }

// DropFirst returns a copy of v without its leading coordinate.
func (v Vector[T]) DropFirst() Vector[T] {
	if len(v) == 0 {
		return Vector[T]{}
	}
	return append(Vector[T]{}, v[1:]...)
}

func (v Vector[T]) String() string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = elemString(x)
	}
	return strings.Join(parts, " ")
}

func (v Vector[T]) key() string { return "[" + v.String() + "]" }

// Matrix is a dense row-major matrix over a ring.
type Matrix[T Element] struct {
	rows, cols int
	data       []T
}

// NewMatrix builds a rows×cols matrix from row-major data.
func NewMatrix[T Element](rows, cols int, data []T) (*Matrix[T], error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("matrix %dx%d needs %d entries, got %d", rows, cols, rows*cols, len(data))
	}
	return &Matrix[T]{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int { return m.cols }

// At returns the entry in row i, column j.
func (m *Matrix[T]) At(i, j int) T { return m.data[i*m.cols+j] }

// Row returns a copy of row i.
func (m *Matrix[T]) Row(i int) Vector[T] {
	return append(Vector[T]{}, m.data[i*m.cols:(i+1)*m.cols]...)
}

// DropFirstColumn returns a new matrix without column 0, turning homogeneous
// coordinates into affine ones.
func (m *Matrix[T]) DropFirstColumn() (*Matrix[T], error) {
	if m.cols < 1 {
		return nil, fmt.Errorf("matrix %dx%d has no column to drop", m.rows, m.cols)
	}
	cols := m.cols - 1
	data := make([]T, 0, m.rows*cols)
	for i := 0; i < m.rows; i++ {
		data = append(data, m.data[i*m.cols+1:(i+1)*m.cols]...)
	}
	return &Matrix[T]{rows: m.rows, cols: cols, data: data}, nil
}

func (m *Matrix[T]) String() string {
	rows := make([]string, m.rows)
	for i := range rows {
		rows[i] = m.Row(i).String()
	}
	return strings.Join(rows, "\n")
}

func (m *Matrix[T]) key() string {
	rows := make([]string, m.rows)
	for i := range rows {
		rows[i] = m.Row(i).key()
	}
	return "[" + strings.Join(rows, "") + "]"
}

// MarshalJSON encodes the matrix as a list of rows.
func (m *Matrix[T]) MarshalJSON() ([]byte, error) {
	rows := make([]Vector[T], m.rows)
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return json.Marshal(rows)
}

// Tuple is an ordered sequence stored inside a Set or used as a Map key.
type Tuple []any

func (t Tuple) key() string {
	parts := make([]string, len(t))
	for i, x := range t {
		parts[i] = Key(x)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Set is an insertion-ordered set with value semantics for its elements.
type Set struct {
	index map[string]int
	elems []any
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Add inserts v and reports whether it was not yet present. Slices are
// stored as Tuple.
func (s *Set) Add(v any) bool {
	if seq, ok := v.([]any); ok {
		v = Tuple(seq)
	}
	k := Key(v)
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.elems)
	s.elems = append(s.elems, v)
	return true
}

// Contains reports whether an element equal to v is present.
func (s *Set) Contains(v any) bool {
	_, ok := s.index[Key(v)]
	return ok
}

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// Elements returns the elements in insertion order.
func (s *Set) Elements() []any {
	return append([]any(nil), s.elems...)
}

func (s *Set) key() string {
	keys := make([]string, len(s.elems))
	for i, e := range s.elems {
		keys[i] = Key(e)
	}
	sort.Strings(keys)
	return "{" + strings.Join(keys, ",") + "}"
}

func (s *Set) String() string {
	parts := make([]string, len(s.elems))
	for i, e := range s.elems {
		parts[i] = fmt.Sprint(e)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON encodes the set as a list.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.elems)
}

// Entry is a key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered mapping with value semantics for its keys.
type Map struct {
	index   map[string]int
	entries []Entry
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Put stores value under key, replacing any previous value.
func (m *Map) Put(key, value any) {
	if seq, ok := key.([]any); ok {
		key = Tuple(seq)
	}
	k := Key(key)
	if i, ok := m.index[k]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	i, ok := m.index[Key(key)]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns the entries in insertion order.
func (m *Map) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

func (m *Map) key() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = Key(e.Key) + ":" + Key(e.Value)
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func (m *Map) String() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = fmt.Sprintf("%v: %v", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the map as a list of [key, value] pairs, since keys
// need not be strings.
func (m *Map) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, len(m.entries))
	for i, e := range m.entries {
		pairs[i] = [2]any{e.Key, e.Value}
	}
	return json.Marshal(pairs)
}

// Pair is an ordered pair.
type Pair struct {
	First  any
	Second any
}

func (p Pair) key() string { return "<" + Key(p.First) + "," + Key(p.Second) + ">" }

func (p Pair) String() string { return fmt.Sprintf("(%v, %v)", p.First, p.Second) }

// MarshalJSON encodes the pair as a two-element list.
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.First, p.Second})
}

// IncidenceMatrix records, for each row, the set of columns it is incident to.
type IncidenceMatrix struct {
	cols int
	rows [][]int
}

// NewIncidenceMatrix builds an incidence structure over cols columns. Each
// row is sorted and deduplicated; indices must lie in [0, cols).
func NewIncidenceMatrix(cols int, rows [][]int) (*IncidenceMatrix, error) {
	if cols < 0 {
		return nil, fmt.Errorf("negative column count %d", cols)
	}
	out := make([][]int, len(rows))
	for i, row := range rows {
		r := make([]int, len(row))
		copy(r, row)
		sort.Ints(r)
		dedup := r[:0]
		for j, c := range r {
			if c < 0 || c >= cols {
				return nil, fmt.Errorf("row %d: column %d out of range [0,%d)", i, c, cols)
			}
			if j > 0 && c == r[j-1] {
				continue
			}
			dedup = append(dedup, c)
		}
		out[i] = dedup
	}
	return &IncidenceMatrix{cols: cols, rows: out}, nil
}

// Rows returns the number of rows.
func (m *IncidenceMatrix) Rows() int { return len(m.rows) }

// Cols returns the number of columns.
func (m *IncidenceMatrix) Cols() int { return m.cols }

// Row returns the sorted column indices of row i.
func (m *IncidenceMatrix) Row(i int) []int {
	return append([]int(nil), m.rows[i]...)
}

// Contains reports whether row i is incident to column j.
func (m *IncidenceMatrix) Contains(i, j int) bool {
	row := m.rows[i]
	k := sort.SearchInts(row, j)
	return k < len(row) && row[k] == j
}

func (m *IncidenceMatrix) key() string {
	return fmt.Sprintf("%d%v", m.cols, m.rows)
}

func (m *IncidenceMatrix) String() string {
	lines := make([]string, len(m.rows))
	for i, row := range m.rows {
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = strconv.Itoa(c)
		}
		lines[i] = "{" + strings.Join(parts, " ") + "}"
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON encodes the structure with its column count.
func (m *IncidenceMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cols int     `json:"cols"`
		Rows [][]int `json:"rows"`
	}{m.cols, m.rows})
}
