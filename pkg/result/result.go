// Package result provides the tagged success-or-failure outcome returned by
// every session operation.
package result

import (
	apperrors "github.com/charlesng35/sftpctl/pkg/errors"
)

// Unit is the empty success payload.
type Unit struct{}

// Result holds either a success value or a failure descriptor, never both.
type Result[T any] struct {
	value T
	err   *apperrors.AppError
}

// Ok wraps a success value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Done is shorthand for a successful Result[Unit].
func Done() Result[Unit] {
	return Result[Unit]{}
}

// Fail wraps a failure. A nil err is replaced with a generic transfer error so
// a failed Result always carries a descriptor.
func Fail[T any](err *apperrors.AppError) Result[T] {
	if err == nil {
		err = apperrors.ErrTransfer
	}
	return Result[T]{err: err}
}

// IsOk reports whether the result is a success.
func (r Result[T]) IsOk() bool {
	return r.err == nil
}

// Err returns the failure descriptor, or nil on success.
func (r Result[T]) Err() *apperrors.AppError {
	return r.err
}

// Value returns the success payload and true, or the zero value and false.
func (r Result[T]) Value() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Get converts the result into Go's (value, error) pair.
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
