package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowRoundTrip(t *testing.T) {
	row := Row{
		"name":  String("widget"),
		"count": Int(3),
		"price": Float(2.5),
		"live":  Bool(true),
		"note":  None{},
		"vec": Array{
			DType: "float64",
			Shape: []int{2},
			Elems: []Value{Float(1.5), Float(-2)},
		},
	}

	data, err := MarshalRow(row)
	require.NoError(t, err)

	got, err := UnmarshalRow(data)
	require.NoError(t, err)
	assert.Equal(t, CanonicalRow(row), CanonicalRow(got))
	// Int stays Int: the tagged encoding must not degrade it to a float.
	assert.Equal(t, Int(3), got["count"])
}

func TestStreamRoundTrip(t *testing.T) {
	key := KeyOf(Int(1))
	stream := Stream{
		{Key: key, Row: Row{"v": Int(1)}, Time: 1, Diff: +1},
		{Key: key, Row: Row{"v": Int(1)}, Time: 2, Diff: -1},
		{Key: key, Row: Row{"v": Int(2)}, Time: 2, Diff: +1},
	}

	data, err := MarshalStream(stream)
	require.NoError(t, err)

	got, err := UnmarshalStream(data)
	require.NoError(t, err)
	require.Len(t, got, len(stream))
	for i := range stream {
		assert.Equal(t, stream[i].Key, got[i].Key)
		assert.Equal(t, stream[i].Time, got[i].Time)
		assert.Equal(t, stream[i].Diff, got[i].Diff)
		assert.True(t, RowsEqual(stream[i].Row, got[i].Row))
	}
}

func TestUnmarshalRow_UnknownTag(t *testing.T) {
	_, err := UnmarshalRow([]byte(`{"v": {"t": "decimal", "v": "1"}}`))
	assert.Error(t, err)
}
