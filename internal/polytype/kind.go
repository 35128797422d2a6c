package polytype

// Kind identifies a recognised type constructor.
type Kind int

// Recognised type constructors.
const (
	KindUnknown Kind = iota
	KindInt
	KindInteger
	KindRational
	KindFloat
	KindBool
	KindString
	KindVector
	KindMatrix
	KindArray
	KindSet
	KindMap
	KindPair
	KindIncidenceMatrix
	KindSerialized
	KindSparseVector
	KindSparseMatrix
	KindPolynomial
	KindUniPolynomial
	KindHashMap
	KindNonSymmetric
	KindSymmetric
)

// arity bounds the number of template arguments a constructor accepts.
type arity struct {
	min, max int
}

type kindInfo struct {
	name  string
	arity arity
}

var kinds = map[Kind]kindInfo{
	KindInt:             {"Int", arity{0, 0}},
	KindInteger:         {"Integer", arity{0, 0}},
	KindRational:        {"Rational", arity{0, 0}},
	KindFloat:           {"Float", arity{0, 0}},
	KindBool:            {"Bool", arity{0, 0}},
	KindString:          {"String", arity{0, 0}},
	KindNonSymmetric:    {"NonSymmetric", arity{0, 0}},
	KindSymmetric:       {"Symmetric", arity{0, 0}},
	KindVector:          {"Vector", arity{1, 1}},
	KindArray:           {"Array", arity{1, 1}},
	KindSet:             {"Set", arity{1, 1}},
	KindSerialized:      {"Serialized", arity{1, 1}},
	KindSparseVector:    {"SparseVector", arity{1, 1}},
	KindIncidenceMatrix: {"IncidenceMatrix", arity{0, 1}},
	KindMatrix:          {"Matrix", arity{1, 2}},
	KindSparseMatrix:    {"SparseMatrix", arity{1, 2}},
	KindPair:            {"Pair", arity{2, 2}},
	KindMap:             {"Map", arity{2, 2}},
	KindHashMap:         {"HashMap", arity{2, 2}},
	KindPolynomial:      {"Polynomial", arity{2, 2}},
	KindUniPolynomial:   {"UniPolynomial", arity{2, 2}},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, info := range kinds {
		m[info.name] = k
	}
	return m
}()

// KindOf returns the Kind for a bare (namespace-free) constructor name.
// Matching is case-sensitive. Unrecognised names yield KindUnknown.
func KindOf(name string) Kind {
	return kindsByName[name]
}

// String returns the constructor name, or "Unknown".
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "Unknown"
}

// IsRing reports whether k is a coefficient ring for vectors and matrices.
func (k Kind) IsRing() bool {
	return k == KindRational || k == KindInteger || k == KindInt
}

// IsScalar reports whether k takes no template arguments and converts a single scalar.
func (k Kind) IsScalar() bool {
	switch k {
	case KindInt, KindInteger, KindRational, KindFloat, KindBool, KindString:
		return true
	default:
		return false
	}
}

// symmetryArg returns the index of the optional symmetry tag argument of k,
// or -1 when k takes none.
func (k Kind) symmetryArg() int {
	switch k {
	case KindMatrix, KindSparseMatrix:
		return 1
	case KindIncidenceMatrix:
		return 0
	default:
		return -1
	}
}

func (k Kind) isSymmetry() bool {
	return k == KindNonSymmetric || k == KindSymmetric
}

// acceptsArgs reports whether n template arguments are valid for k.
// Unknown constructors accept any count; conversion rejects them later.
func (k Kind) acceptsArgs(n int) bool {
	info, ok := kinds[k]
	if !ok {
		return true
	}
	return n >= info.arity.min && n <= info.arity.max
}
