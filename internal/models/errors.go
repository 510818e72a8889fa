package models

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure so the HTTP layer can map it to a
// status code without string matching.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindUnauthorized       Kind = "unauthorized"
	KindAuthResolution     Kind = "auth_resolution"
	KindPlanRequired       Kind = "plan_required"
	KindUpstream           Kind = "upstream"
	KindStorage            Kind = "storage"
	KindPersistence        Kind = "persistence"
	KindNotFound           Kind = "not_found"
	KindUnreadableDocument Kind = "unreadable_document"
)

// Error carries a user-facing message and an optional wrapped cause.
// Message is safe to return to clients; Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err, or KindPersistence for anything
// unclassified so unknown failures map to a 500.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// MessageOf returns the client-safe message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
