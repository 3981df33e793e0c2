package change

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface over the cell types an engine row may carry.
// Only String, Int, Float, Bool, None and Array implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// String is a text cell. Compared and hashed after NFC normalization.
type String string

func (String) value() {}

// Int is an integer cell. Always int64.
type Int int64

func (Int) value() {}

// Float is a floating-point cell.
type Float float64

func (Float) value() {}

// Bool is a boolean cell.
type Bool bool

func (Bool) value() {}

// None is an absent/null cell.
type None struct{}

func (None) value() {}

// Array is a structured, array-valued cell. DType and Shape carry the
// element type and dimensions; Elems holds the values flattened in
// row-major order.
//
// Arrays do not compare meaningfully with ==; use Canonicalize before any
// set or multiset comparison.
type Array struct {
	DType string
	Shape []int
	Elems []Value
}

func (Array) value() {}

// Row maps column names to cell values.
type Row map[string]Value

// Canonicalize returns a stable comparison key for a value. It is total
// and consistent: equal values canonicalize equally, and values of
// different types never collide. Arrays canonicalize to their type, dtype,
// shape and a stable element representation.
func Canonicalize(v Value) string {
	var b strings.Builder
	appendCanonical(&b, v)
	return b.String()
}

// CanonicalRow returns a stable comparison key for a full row.
// Column names are emitted in sorted order so map iteration order
// never leaks into the key.
func CanonicalRow(row Row) string {
	var b strings.Builder
	appendCanonicalRow(&b, row)
	return b.String()
}

func appendCanonical(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case None:
		b.WriteString("null")
	case String:
		b.WriteString("str:")
		b.WriteString(strconv.Quote(norm.NFC.String(string(val))))
	case Int:
		b.WriteString("int:")
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		b.WriteString("float:")
		b.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
	case Bool:
		b.WriteString("bool:")
		b.WriteString(strconv.FormatBool(bool(val)))
	case Array:
		b.WriteString("array[")
		b.WriteString(val.DType)
		b.WriteString("](")
		for i, dim := range val.Shape {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(dim))
		}
		b.WriteString("):[")
		for i, elem := range val.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			appendCanonical(b, elem)
		}
		b.WriteByte(']')
	}
}

func appendCanonicalRow(b *strings.Builder, row Row) {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sortStrings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		appendCanonical(b, row[k])
	}
	b.WriteByte('}')
}

// RowsEqual reports whether two rows carry the same columns with equal
// values. Equality goes through canonicalization so array-valued cells
// compare by content rather than by header identity.
func RowsEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	return CanonicalRow(a) == CanonicalRow(b)
}

// sortStrings is an insertion sort; rows are small and this avoids
// pulling sort into the hot canonicalization path for 2-3 columns.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
