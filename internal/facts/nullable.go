package facts

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Nullable is a tri-state field. A zero Nullable is missing: the key was never
// supplied. Null means the source explicitly recorded that the fact is absent.
// The contract validator rejects missing values and accepts null ones.
type Nullable[T any] struct {
	value T
	valid bool
	set   bool
}

// Some returns a present value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, valid: true, set: true}
}

// Null returns an explicit fact absence.
func Null[T any]() Nullable[T] {
	return Nullable[T]{set: true}
}

// FromPtr maps a database pointer: nil becomes Null, never missing.
func FromPtr[T any](p *T) Nullable[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (n Nullable[T]) Get() (T, bool) {
	return n.value, n.valid
}

func (n Nullable[T]) Present() bool { return n.valid }
func (n Nullable[T]) IsNull() bool  { return n.set && !n.valid }
func (n Nullable[T]) Missing() bool { return !n.set }

// Ptr returns a copy of the value, or nil when not present.
func (n Nullable[T]) Ptr() *T {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// MarshalJSON renders missing and null identically as JSON null.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return jsonNull, nil
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON is only invoked when the key is present, which is what lets
// decoding tell an omitted key apart from an explicit null.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		var zero T
		n.value = zero
		n.valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.value); err != nil {
		return err
	}
	n.valid = true
	return nil
}
