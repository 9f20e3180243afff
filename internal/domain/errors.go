// Package domain holds the error kinds and paging helpers shared by the domain services.
package domain

import "errors"

// Error kinds. Every domain sentinel unwraps to exactly one of these,
// which is what the HTTP layer maps to a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("request rejected")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func NotFound(msg string) error     { return &kindError{msg: msg, kind: ErrNotFound} }
func Invalid(msg string) error      { return &kindError{msg: msg, kind: ErrInvalid} }
func Conflict(msg string) error     { return &kindError{msg: msg, kind: ErrConflict} }
func Forbidden(msg string) error    { return &kindError{msg: msg, kind: ErrForbidden} }
func Unauthorized(msg string) error { return &kindError{msg: msg, kind: ErrUnauthorized} }
func Rejected(msg string) error     { return &kindError{msg: msg, kind: ErrRejected} }
