// Package loadstate models the lifecycle of one asynchronously loaded value.
package loadstate

import (
	"encoding/json"
	"fmt"
)

// State is the phase an Entry is in.
type State uint8

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateEmpty
	StateError
)

var stateNames = [...]string{
	StateIdle:    "idle",
	StateLoading: "loading",
	StateReady:   "ready",
	StateEmpty:   "empty",
	StateError:   "error",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// MarshalText encodes the state as its lowercase name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether s is one of Ready, Empty or Error.
func (s State) Terminal() bool {
	return s == StateReady || s == StateEmpty || s == StateError
}

// Entry is an immutable load state for a value of type T. Data is only
// present in the Ready state and a message only in the Error state; the
// constructors are the sole way to build one, and the zero value is Idle.
type Entry[T any] struct {
	state   State
	data    T
	message string
}

// Idle is a slot nothing has been requested for.
func Idle[T any]() Entry[T] {
	return Entry[T]{state: StateIdle}
}

// Loading is a slot with a request in flight.
func Loading[T any]() Entry[T] {
	return Entry[T]{state: StateLoading}
}

// Ready holds a successfully loaded value.
func Ready[T any](data T) Entry[T] {
	return Entry[T]{state: StateReady, data: data}
}

// Empty is a completed request that found nothing.
func Empty[T any]() Entry[T] {
	return Entry[T]{state: StateEmpty}
}

// Failed is a completed request that failed with a displayable message.
func Failed[T any](message string) Entry[T] {
	return Entry[T]{state: StateError, message: message}
}

// State returns the entry's phase.
func (e Entry[T]) State() State {
	return e.state
}

// Data returns the loaded value and true when the entry is Ready.
func (e Entry[T]) Data() (T, bool) {
	return e.data, e.state == StateReady
}

// Message returns the failure message, or "" unless the entry is an Error.
func (e Entry[T]) Message() string {
	return e.message
}

// IsLoading reports whether a request is in flight.
func (e Entry[T]) IsLoading() bool {
	return e.state == StateLoading
}

type entryJSON[T any] struct {
	State   State  `json:"state"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// MarshalJSON encodes the entry as {"state": ..., "data"?: ..., "message"?: ...}.
func (e Entry[T]) MarshalJSON() ([]byte, error) {
	out := entryJSON[T]{State: e.state, Message: e.message}
	if e.state == StateReady {
		out.Data = &e.data
	}
	return json.Marshal(out)
}
