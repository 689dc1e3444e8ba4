// ABOUTME: Decode-boundary normalisation for fields Synapse serialises inconsistently
// ABOUTME: Flag accepts booleans sent as 0/1, Optional treats "" and null alike as absent

package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flag is a boolean that Synapse sometimes serialises as 0/1. It always
// encodes as a JSON boolean.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("matrix: cannot decode %s as a boolean", data)
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Optional holds a string-like value that the server reports as either null
// or "" when absent.
type Optional[T ~string] struct {
	Value T
	Valid bool
}

// Some returns a present Optional.
func Some[T ~string](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*o = Optional[T]{}
		return nil
	}
	*o = Optional[T]{Value: T(s), Valid: true}
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(string(o.Value))
}

// String returns the value, or "" when absent.
func (o Optional[T]) String() string {
	return string(o.Value)
}
