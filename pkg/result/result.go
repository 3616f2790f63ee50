// Package result provides a two-variant value used by the request pipeline
// instead of error returns. Every fallible stage produces a Result, and the
// first failure short-circuits the rest of the pipeline.
package result

// Result is either a success carrying a value, or a failure carrying an
// HTTP status code and a client-visible message. Exactly one variant is
// populated; a Result is never modified after creation.
type Result[T any] struct {
	ok      bool
	value   T
	status  int
	message string
}

// Ok creates a success result wrapping the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Fail creates a failure result with an HTTP status code and a message
// suitable for sending to the client.
func Fail[T any](status int, message string) Result[T] {
	return Result[T]{status: status, message: message}
}

// IsOk reports whether the result is the success variant.
func (r Result[T]) IsOk() bool {
	return r.ok
}

// Value returns the success value. It is only meaningful when IsOk is true.
func (r Result[T]) Value() T {
	return r.value
}

// Status returns the HTTP status code of a failure.
func (r Result[T]) Status() int {
	return r.status
}

// Message returns the client-visible message of a failure.
func (r Result[T]) Message() string {
	return r.message
}

// FailFrom carries a failure over to a result of a different value type.
// It is used when a stage propagates a failure from the stage before it.
func FailFrom[T, U any](r Result[U]) Result[T] {
	return Fail[T](r.status, r.message)
}
