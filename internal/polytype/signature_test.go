package polytype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

func TestParse_Scalar(t *testing.T) {
	d, err := Parse("Int")

	require.NoError(t, err)
	assert.Equal(t, "Int", d.Name)
	assert.Equal(t, KindInt, d.Kind)
	assert.Empty(t, d.Args)
}

func TestParse_NestedCommaIsNotASplitPoint(t *testing.T) {
	d, err := Parse("Map<Pair<Int,Int>,Set<Int>>")

	require.NoError(t, err)
	require.Len(t, d.Args, 2)
	assert.Equal(t, KindMap, d.Kind)
	assert.Equal(t, "Pair<Int,Int>", d.Args[0].String())
	assert.Equal(t, "Set<Int>", d.Args[1].String())
	assert.Equal(t, KindPair, d.Args[0].Kind)
	require.Len(t, d.Args[0].Args, 2)
}

func TestParse_DeepNesting(t *testing.T) {
	d, err := Parse("Map<Int,Pair<Integer,Set<Int>>>")

	require.NoError(t, err)
	assert.Equal(t, "Int", d.Args[0].String())
	pair := d.Args[1]
	assert.Equal(t, KindPair, pair.Kind)
	assert.Equal(t, KindInteger, pair.Args[0].Kind)
	assert.Equal(t, KindSet, pair.Args[1].Kind)
	assert.Equal(t, KindInt, pair.Args[1].Args[0].Kind)
}

func TestParse_Namespaces(t *testing.T) {
	d, err := Parse("polymake::common::Matrix<common::Rational, NonSymmetric>")

	require.NoError(t, err)
	assert.Equal(t, "Matrix", d.Name)
	assert.Equal(t, "polymake::common", d.Namespace)
	assert.Equal(t, KindMatrix, d.Kind)
	assert.Equal(t, "common", d.Args[0].Namespace)
	assert.Equal(t, "Matrix<Rational,NonSymmetric>", d.String())
	assert.Equal(t, "polymake::common::Matrix<common::Rational,NonSymmetric>", d.QualifiedString())
}

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Int", "Int"},
		{"Vector<Integer>", "Vector<Integer>"},
		{"  Matrix< Rational >  ", "Matrix<Rational>"},
		{"polymake::common::Set<polymake::common::Int>", "Set<Int>"},
		{"Map<Pair<Int,Int>,Set<Int>>", "Map<Pair<Int,Int>,Set<Int>>"},
		{"Array<Array<Set<Int>>>", "Array<Array<Set<Int>>>"},
		{"IncidenceMatrix<NonSymmetric>", "IncidenceMatrix<NonSymmetric>"},
		{"Foo<Bar,Baz<Qux>>", "Foo<Bar,Baz<Qux>>"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())

			norm, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, norm, d.String())

			again, err := Parse(d.String())
			require.NoError(t, err)
			assert.Equal(t, d.String(), again.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"only whitespace", "   "},
		{"unmatched open", "Set<Int"},
		{"unmatched close", "Set<Int>>"},
		{"stray close", "Int>"},
		{"empty arguments", "Set<>"},
		{"empty second argument", "Map<Int,>"},
		{"missing name", "<Int>"},
		{"trailing identifier", "Int Int"},
		{"invalid character", "Set<Int;>"},
		{"dangling namespace", "common::"},
		{"empty namespace segment", "a::::b"},
		{"leading empty namespace segment", "polymake::::common::Int"},
		{"matrix with ring as symmetry", "Matrix<Rational,Int>"},
		{"matrix with unknown symmetry", "Matrix<Rational,Foo>"},
		{"incidence with ring", "IncidenceMatrix<Int>"},
		{"arity too many for Set", "Set<Int,Int>"},
		{"arity too few for Map", "Map<Int>"},
		{"arguments on scalar", "Int<Rational>"},
		{"matrix without ring", "Matrix"},
		{"pair with three", "Pair<Int,Int,Int>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedTypeSignature))

			var sigErr *SignatureError
			require.True(t, errors.As(err, &sigErr))
			assert.Equal(t, tt.in, sigErr.Signature)
		})
	}
}

func TestParse_ArityRanges(t *testing.T) {
	for _, sig := range []string{
		"Matrix<Rational>",
		"Matrix<Rational,NonSymmetric>",
		"IncidenceMatrix",
		"IncidenceMatrix<NonSymmetric>",
		"SparseMatrix<Integer,Symmetric>",
	} {
		_, err := Parse(sig)
		assert.NoError(t, err, sig)
	}
}

func TestParse_DepthLimit(t *testing.T) {
	sig := "Int"
	for i := 0; i <= MaxDepth+1; i++ {
		sig = "Array<" + sig + ">"
	}

	_, err := Parse(sig)

	assert.ErrorIs(t, err, domain.ErrMalformedTypeSignature)
}

func TestParse_ErrorOffset(t *testing.T) {
	_, err := Parse("Set<Int")

	var sigErr *SignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, 3, sigErr.Offset)
	assert.Contains(t, sigErr.Error(), "unmatched '<'")
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("Set<") })
	assert.NotPanics(t, func() { MustParse("Set<Int>") })
}

func TestDescriptor_Arg(t *testing.T) {
	d := MustParse("Pair<Int,String>")

	assert.Equal(t, KindInt, d.Arg(0).Kind)
	assert.Equal(t, KindString, d.Arg(1).Kind)
	assert.Nil(t, d.Arg(2))
	assert.Nil(t, d.Arg(-1))
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindRational, KindOf("Rational"))
	assert.Equal(t, KindUnknown, KindOf("rational"))
	assert.Equal(t, "Matrix", KindMatrix.String())
	assert.Equal(t, "Unknown", KindUnknown.String())
	assert.True(t, KindInt.IsRing())
	assert.False(t, KindFloat.IsRing())
	assert.True(t, KindString.IsScalar())
	assert.False(t, KindSet.IsScalar())
}
