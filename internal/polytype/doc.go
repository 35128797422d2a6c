// Package polytype reconstructs typed mathematical objects from the generic
// JSON-like representation stored in polyDB.
//
// A property is described by a polymake type signature such as
// "Matrix<Rational,NonSymmetric>" or "Map<Int,Pair<Integer,Set<Int>>>".
// Parse turns the signature into a Descriptor tree, and Convert walks a raw
// value (slices, string-keyed maps and scalars, as decoded from BSON or JSON)
// alongside it, producing:
//
//   - Int, Integer, Rational: int64, *big.Int, *big.Rat
//   - Bool, String, Float: bool, string, float64
//   - Vector<R>, Matrix<R>: Vector[T] and *Matrix[T] over R
//   - Array<E>: []any
//   - Set<E>, Map<K,V>, Pair<A,B>: *Set, *Map, Pair
//   - IncidenceMatrix: *IncidenceMatrix
//
// Every failure is returned as an error wrapping one of the domain sentinels
// (ErrMalformedTypeSignature, ErrUnsupportedType, ErrUnknownRing,
// ErrShapeMismatch, ErrInvalidValue); nothing is silently mapped to nil.
//
// The package holds no state and is safe for concurrent use.
package polytype
