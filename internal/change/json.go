package change

import (
	"encoding/json"
	"fmt"
)

// Wire form for rows and streams. Values are type-tagged so integers and
// floats survive the round trip and arrays keep their dtype and shape.

type wireValue struct {
	T     string          `json:"t"`
	V     json.RawMessage `json:"v,omitempty"`
	DType string          `json:"dtype,omitempty"`
	Shape []int           `json:"shape,omitempty"`
	Elems []wireValue     `json:"elems,omitempty"`
}

type wireChange struct {
	Key  string               `json:"key"`
	Row  map[string]wireValue `json:"row"`
	Time int64                `json:"time"`
	Diff int                  `json:"diff"`
}

func toWire(v Value) (wireValue, error) {
	switch val := v.(type) {
	case nil, None:
		return wireValue{T: "null"}, nil
	case String:
		raw, err := json.Marshal(string(val))
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{T: "str", V: raw}, nil
	case Int:
		raw, err := json.Marshal(int64(val))
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{T: "int", V: raw}, nil
	case Float:
		raw, err := json.Marshal(float64(val))
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{T: "float", V: raw}, nil
	case Bool:
		raw, err := json.Marshal(bool(val))
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{T: "bool", V: raw}, nil
	case Array:
		elems := make([]wireValue, len(val.Elems))
		for i, elem := range val.Elems {
			w, err := toWire(elem)
			if err != nil {
				return wireValue{}, fmt.Errorf("array elem %d: %w", i, err)
			}
			elems[i] = w
		}
		return wireValue{T: "array", DType: val.DType, Shape: val.Shape, Elems: elems}, nil
	default:
		return wireValue{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func fromWire(w wireValue) (Value, error) {
	switch w.T {
	case "null":
		return None{}, nil
	case "str":
		var s string
		if err := json.Unmarshal(w.V, &s); err != nil {
			return nil, fmt.Errorf("decode string: %w", err)
		}
		return String(s), nil
	case "int":
		var n int64
		if err := json.Unmarshal(w.V, &n); err != nil {
			return nil, fmt.Errorf("decode int: %w", err)
		}
		return Int(n), nil
	case "float":
		var f float64
		if err := json.Unmarshal(w.V, &f); err != nil {
			return nil, fmt.Errorf("decode float: %w", err)
		}
		return Float(f), nil
	case "bool":
		var b bool
		if err := json.Unmarshal(w.V, &b); err != nil {
			return nil, fmt.Errorf("decode bool: %w", err)
		}
		return Bool(b), nil
	case "array":
		elems := make([]Value, len(w.Elems))
		for i, we := range w.Elems {
			elem, err := fromWire(we)
			if err != nil {
				return nil, fmt.Errorf("array elem %d: %w", i, err)
			}
			elems[i] = elem
		}
		return Array{DType: w.DType, Shape: w.Shape, Elems: elems}, nil
	default:
		return nil, fmt.Errorf("unknown value tag %q", w.T)
	}
}

func rowToWire(row Row) (map[string]wireValue, error) {
	wire := make(map[string]wireValue, len(row))
	for col, v := range row {
		w, err := toWire(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		wire[col] = w
	}
	return wire, nil
}

func rowFromWire(wire map[string]wireValue) (Row, error) {
	row := make(Row, len(wire))
	for col, w := range wire {
		v, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		row[col] = v
	}
	return row, nil
}

// MarshalRow serializes a row to its JSON wire form.
func MarshalRow(row Row) ([]byte, error) {
	wire, err := rowToWire(row)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalRow parses a row from its JSON wire form.
func UnmarshalRow(data []byte) (Row, error) {
	var wire map[string]wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return rowFromWire(wire)
}

// MarshalStream serializes a captured stream to JSON.
func MarshalStream(s Stream) ([]byte, error) {
	wire := make([]wireChange, len(s))
	for i, c := range s {
		row, err := rowToWire(c.Row)
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		wire[i] = wireChange{Key: string(c.Key), Row: row, Time: c.Time, Diff: c.Diff}
	}
	return json.MarshalIndent(wire, "", "  ")
}

// UnmarshalStream parses a captured stream from JSON.
func UnmarshalStream(data []byte) (Stream, error) {
	var wire []wireChange
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode stream: %w", err)
	}
	s := make(Stream, len(wire))
	for i, wc := range wire {
		row, err := rowFromWire(wc.Row)
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
		s[i] = Change{Key: Key(wc.Key), Row: row, Time: wc.Time, Diff: wc.Diff}
	}
	return s, nil
}
