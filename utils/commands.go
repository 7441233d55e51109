package pwmutils

import (
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"
)

// DoCommand arguments arrive as decoded JSON, so numbers are usually float64.

// ToFloat converts a DoCommand argument to a float64.
func ToFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, InvalidArgumentf("expected a number, got %T", v)
	}
}

// ToInt converts a DoCommand argument to an int. Fractional values are rejected.
func ToInt(v interface{}) (int, error) {
	f, err := ToFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, InvalidArgumentf("expected an integer, got %v", f)
	}
	return int(f), nil
}

// ToIntSlice converts a DoCommand argument holding a list of numbers.
func ToIntSlice(v interface{}, length int) ([]int, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, InvalidArgumentf("expected a list of %d numbers, got %T", length, v)
	}
	if len(list) != length {
		return nil, InvalidArgumentf("expected a list of %d numbers, got %d", length, len(list))
	}
	out := make([]int, 0, length)
	for i, item := range list {
		n, err := ToInt(item)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		out = append(out, n)
	}
	return out, nil
}

// MillisecondsArg reads an optional millisecond count from args, falling back to def.
func MillisecondsArg(args map[string]interface{}, key string, def time.Duration) (time.Duration, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	ms, err := ToFloat(raw)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	if ms < 0 {
		return 0, InvalidArgumentf("%s must not be negative, got %v", key, ms)
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// IntArg reads an optional integer from args, falling back to def.
func IntArg(args map[string]interface{}, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	n, err := ToInt(raw)
	if err != nil {
		return 0, errors.Wrap(err, key)
	}
	return n, nil
}

// ArgsMap reads a nested argument object.
func ArgsMap(v interface{}) (map[string]interface{}, error) {
	args, ok := v.(map[string]interface{})
	if !ok {
		return nil, InvalidArgumentf("expected an object, got %T", v)
	}
	return args, nil
}
