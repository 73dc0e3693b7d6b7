// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package media

import (
	"bytes"
	"encoding/json"
)

// Some wraps v into a set Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{v: &v}
}

// Optional holds a value the probe may not have reported. Zero value is unset.
type Optional[T any] struct {
	// Pointer keeps "not reported" apart from a reported zero value.
	v *T
}

// Value returns wrapped value or zero value of T when unset.
func (o Optional[T]) Value() T {
	if o.v == nil {
		var v T
		return v
	}
	return *o.v
}

// Get returns wrapped value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value(), o.v != nil
}

// IsSet reports whether value is present.
func (o Optional[T]) IsSet() bool {
	return o.v != nil
}

// MarshalJSON implements json.Marshaler interface, unset values are encoded as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.v)
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.v = nil
		return nil
	}
	var val T
	if err := json.Unmarshal(b, &val); err != nil {
		return err
	}
	o.v = &val
	return nil
}
