package harness

import (
	"fmt"

	"github.com/streamcheck/streamcheck/internal/change"
)

// toValue converts a YAML-parsed value to a row cell value.
func toValue(v any) (change.Value, error) {
	switch val := v.(type) {
	case nil:
		return change.None{}, nil
	case string:
		return change.String(val), nil
	case int:
		return change.Int(int64(val)), nil
	case int64:
		return change.Int(val), nil
	case float64:
		return change.Float(val), nil
	case bool:
		return change.Bool(val), nil
	case []any:
		elems := make([]change.Value, len(val))
		for i, elem := range val {
			cv, err := toValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			elems[i] = cv
		}
		return change.Array{
			DType: inferDType(elems),
			Shape: []int{len(elems)},
			Elems: elems,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// inferDType names the element type of a homogeneous array.
func inferDType(elems []change.Value) string {
	dtype := ""
	for _, elem := range elems {
		var t string
		switch elem.(type) {
		case change.Int:
			t = "int64"
		case change.Float:
			t = "float64"
		case change.String:
			t = "str"
		case change.Bool:
			t = "bool"
		default:
			t = "mixed"
		}
		if dtype == "" {
			dtype = t
		} else if dtype != t {
			return "mixed"
		}
	}
	return dtype
}

// toRow converts a YAML-parsed row mapping.
func toRow(m map[string]any) (change.Row, error) {
	row := make(change.Row, len(m))
	for col, v := range m {
		cv, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col, err)
		}
		row[col] = cv
	}
	return row, nil
}

// keyFor derives a row's key from its key-column values, in column
// order.
func keyFor(row change.Row, keyColumns []string) (change.Key, error) {
	vals := make([]change.Value, len(keyColumns))
	for i, col := range keyColumns {
		v, ok := row[col]
		if !ok {
			return "", fmt.Errorf("row is missing key column %q", col)
		}
		vals[i] = v
	}
	return change.KeyOf(vals...), nil
}

// fromValue converts a row cell value back to a plain value for JSON
// result output.
func fromValue(v change.Value) any {
	switch val := v.(type) {
	case change.String:
		return string(val)
	case change.Int:
		return int64(val)
	case change.Float:
		return float64(val)
	case change.Bool:
		return bool(val)
	case change.Array:
		elems := make([]any, len(val.Elems))
		for i, elem := range val.Elems {
			elems[i] = fromValue(elem)
		}
		return map[string]any{
			"dtype": val.DType,
			"shape": val.Shape,
			"elems": elems,
		}
	default:
		return nil
	}
}

// fromRow converts a row back to plain values for JSON result output.
func fromRow(row change.Row) map[string]any {
	m := make(map[string]any, len(row))
	for col, v := range row {
		m[col] = fromValue(v)
	}
	return m
}
