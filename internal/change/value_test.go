package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize_ScalarTypesDistinct(t *testing.T) {
	// An int and a float with the same numeric value must not collide.
	assert.NotEqual(t, Canonicalize(Int(1)), Canonicalize(Float(1)))
	// A string spelling a number must not collide with the number.
	assert.NotEqual(t, Canonicalize(String("1")), Canonicalize(Int(1)))
	assert.NotEqual(t, Canonicalize(Bool(true)), Canonicalize(String("true")))
	assert.NotEqual(t, Canonicalize(None{}), Canonicalize(String("null")))
}

func TestCanonicalize_EqualValuesEqualKeys(t *testing.T) {
	assert.Equal(t, Canonicalize(String("abc")), Canonicalize(String("abc")))
	assert.Equal(t, Canonicalize(Float(2.5)), Canonicalize(Float(2.5)))

	a := Array{DType: "float64", Shape: []int{2, 2}, Elems: []Value{Float(1), Float(2), Float(3), Float(4)}}
	b := Array{DType: "float64", Shape: []int{2, 2}, Elems: []Value{Float(1), Float(2), Float(3), Float(4)}}
	assert.Equal(t, Canonicalize(a), Canonicalize(b))
}

func TestCanonicalize_UnicodeNormalization(t *testing.T) {
	// "é" as a single code point vs "e" + combining acute accent.
	composed := String("é")
	decomposed := String("é")
	assert.Equal(t, Canonicalize(composed), Canonicalize(decomposed))
}

func TestCanonicalize_ArrayShapeAndDTypeMatter(t *testing.T) {
	flat := Array{DType: "float64", Shape: []int{4}, Elems: []Value{Float(1), Float(2), Float(3), Float(4)}}
	square := Array{DType: "float64", Shape: []int{2, 2}, Elems: []Value{Float(1), Float(2), Float(3), Float(4)}}
	assert.NotEqual(t, Canonicalize(flat), Canonicalize(square))

	ints := Array{DType: "int64", Shape: []int{2}, Elems: []Value{Int(1), Int(2)}}
	floats := Array{DType: "float64", Shape: []int{2}, Elems: []Value{Float(1), Float(2)}}
	assert.NotEqual(t, Canonicalize(ints), Canonicalize(floats))
}

func TestCanonicalRow_ColumnOrderIrrelevant(t *testing.T) {
	// Maps have no order, but the canonical key must be stable regardless
	// of construction order.
	a := Row{"v": Int(1), "k": String("x")}
	b := Row{"k": String("x"), "v": Int(1)}
	assert.Equal(t, CanonicalRow(a), CanonicalRow(b))
}

func TestRowsEqual(t *testing.T) {
	a := Row{"v": Array{DType: "int64", Shape: []int{2}, Elems: []Value{Int(1), Int(2)}}}
	b := Row{"v": Array{DType: "int64", Shape: []int{2}, Elems: []Value{Int(1), Int(2)}}}
	assert.True(t, RowsEqual(a, b))

	c := Row{"v": Array{DType: "int64", Shape: []int{2}, Elems: []Value{Int(1), Int(3)}}}
	assert.False(t, RowsEqual(a, c))

	assert.False(t, RowsEqual(Row{"v": Int(1)}, Row{"v": Int(1), "w": Int(2)}))
}
