// Package page holds the per-page view state of the advisor and alert pages:
// the current input, whether a request is pending, and the last result.
package page

// Result is the outcome of the most recent request: absent, a value, or an
// error message. A value and an error are never held at the same time.
type Result[T any] struct {
	value *T
	err   string
}

// Succeeded wraps a successful payload.
func Succeeded[T any](v *T) Result[T] {
	return Result[T]{value: v}
}

// Failed wraps a display error message.
func Failed[T any](msg string) Result[T] {
	return Result[T]{err: msg}
}

// Absent reports whether no outcome is held.
func (r Result[T]) Absent() bool {
	return r.value == nil && r.err == ""
}

// Value returns the payload, or nil.
func (r Result[T]) Value() *T {
	return r.value
}

// Err returns the display error message, or "".
func (r Result[T]) Err() string {
	return r.err
}
