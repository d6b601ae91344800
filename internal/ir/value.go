package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// IOIndex identifies an IO channel. Controllers address IO by number, but
// the host may pass a symbolic variable name instead, so the index is kept
// as text and marshals as a JSON number when it is an integer in canonical
// form ("7", not "007").
type IOIndex string

// IntIndex returns the IOIndex for an integer channel.
func IntIndex(n int) IOIndex { return IOIndex(strconv.Itoa(n)) }

// Int returns the numeric channel and whether the index is numeric.
func (x IOIndex) Int() (int, bool) {
	n, err := strconv.Atoi(string(x))
	if err != nil || strconv.Itoa(n) != string(x) {
		return 0, false
	}
	return n, true
}

// MarshalJSON writes numeric indices as numbers and others as strings.
func (x IOIndex) MarshalJSON() ([]byte, error) {
	if n, ok := x.Int(); ok {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(x))
}

// UnmarshalJSON accepts either a number or a string.
func (x *IOIndex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*x = IOIndex(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("io index: %w", err)
	}
	if f == float64(int64(f)) {
		*x = IOIndex(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*x = IOIndex(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Truthy reports whether an IO value counts as "on". Decoded JSON values
// arrive as bool, float64, string or nil.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case float32:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}
