package cache

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State tells a cache miss apart from a cached value and a cached absence.
type State uint8

const (
	// Miss means nothing usable was stored under the key.
	Miss State = iota
	// None means the computation ran and legitimately produced no value.
	None
	// Some means a value was stored.
	Some
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Some:
		return "some"
	default:
		return "miss"
	}
}

// Result is the tagged outcome of a cache lookup.
type Result[V any] struct {
	State State
	Value V
}

// SomeOf wraps a present value.
func SomeOf[V any](v V) Result[V] {
	return Result[V]{State: Some, Value: v}
}

// NoneOf is a cached "no result".
func NoneOf[V any]() Result[V] {
	return Result[V]{State: None}
}

// MissOf is a cache miss.
func MissOf[V any]() Result[V] {
	return Result[V]{State: Miss}
}

// Get returns the value and whether one is present.
func (r Result[V]) Get() (V, bool) {
	return r.Value, r.State == Some
}

// Hit reports whether the lookup found an entry, including a cached None.
func (r Result[V]) Hit() bool {
	return r.State != Miss
}

// envelope is the stored form of a Result; a miss is never stored.
type envelope[V any] struct {
	Empty bool `json:"empty,omitempty"`
	Value V    `json:"value"`
}

func encodeResult[V any](r Result[V]) ([]byte, error) {
	return json.Marshal(envelope[V]{Empty: r.State == None, Value: r.Value})
}

func decodeResult[V any](b []byte) (Result[V], error) {
	var env envelope[V]
	if err := json.Unmarshal(b, &env); err != nil {
		return MissOf[V](), err
	}
	if env.Empty {
		return NoneOf[V](), nil
	}
	return SomeOf(env.Value), nil
}
