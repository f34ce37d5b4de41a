// SPDX-License-Identifier: MIT

package engine

// Sink receives each finished sequence with the index of its request.
// The engine serializes calls to Emit. An error from Emit aborts the run.
type Sink interface {
	Emit(index int, text string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(index int, text string) error

// Emit calls f(index, text).
func (f SinkFunc) Emit(index int, text string) error { return f(index, text) }

// Discard drops every sequence.
var Discard Sink = SinkFunc(func(int, string) error { return nil })
