package utils

import "encoding/json"

// Optional distinguishes a JSON field that is absent, explicitly null, or set.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field carried a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
