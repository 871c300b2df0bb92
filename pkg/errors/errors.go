package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure reported by the session client.
type Kind string

// Error kinds surfaced by session operations.
const (
	KindConnection        Kind = "CONNECTION_ERROR"
	KindDisconnection     Kind = "DISCONNECTION_ERROR"
	KindNotConnected      Kind = "NOT_CONNECTED"
	KindLocalPathNotFound Kind = "LOCAL_PATH_NOT_FOUND"
	KindInvalidLocalPath  Kind = "INVALID_LOCAL_PATH"
	KindPathNotFound      Kind = "PATH_NOT_FOUND"
	KindTransfer          Kind = "TRANSFER_ERROR"
)

// Side identifies which end of a transfer failed.
type Side string

const (
	SideUnknown Side = ""
	SideLocal   Side = "local"
	SideRemote  Side = "remote"
)

// AppError is the failure payload carried by every operation result.
type AppError struct {
	Kind     Kind   `json:"kind"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Side     Side   `json:"side,omitempty"`
	Internal error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Side != SideUnknown {
		fmt.Fprintf(&b, " [%s]", e.Side)
	}
	if e.Internal != nil {
		fmt.Fprintf(&b, ": %v", e.Internal)
	}
	return b.String()
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*AppError)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithPath returns a copy of the AppError naming the path involved.
func (e *AppError) WithPath(path string) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Path = path
	return &cpy
}

// WithSide returns a copy of the AppError tagged with the failing side.
func (e *AppError) WithSide(side Side) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Side = side
	return &cpy
}

// Sentinels for each error kind. Use the With* helpers to attach detail.
var (
	ErrConnection = &AppError{
		Kind:    KindConnection,
		Message: "connection failed",
	}

	ErrDisconnection = &AppError{
		Kind:    KindDisconnection,
		Message: "disconnect failed",
	}

	ErrNotConnected = &AppError{
		Kind:    KindNotConnected,
		Message: "not connected",
	}

	ErrLocalPathNotFound = &AppError{
		Kind:    KindLocalPathNotFound,
		Message: "local path does not exist",
	}

	ErrInvalidLocalPath = &AppError{
		Kind:    KindInvalidLocalPath,
		Message: "local path is not a regular file",
	}

	ErrPathNotFound = &AppError{
		Kind:    KindPathNotFound,
		Message: "remote path not found",
	}

	ErrTransfer = &AppError{
		Kind:    KindTransfer,
		Message: "transfer failed",
	}
)

// KindOf returns the kind of err, or an empty Kind when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return ""
}
