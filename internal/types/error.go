package types

import (
	"errors"
	"fmt"
)

// Kind buckets engine errors for transport mapping. The engine never
// distinguishes "missing" from "exists but not yours" — both are KindNotFound.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindUpstream   Kind = "upstream"
	KindForbidden  Kind = "forbidden"
)

// CustomError is the error surfaced across the service boundary. Type is a
// dotted origin label (e.g. "materials.upload.complete") used in response
// envelopes and logs.
type CustomError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Err     error  `json:"-"`
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s [type: %s]: %v", e.Kind, e.Message, e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %s [type: %s]", e.Kind, e.Message, e.Type)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewNotFound builds a not-found error.
func NewNotFound(errorType, message string) *CustomError {
	return &CustomError{Kind: KindNotFound, Message: message, Type: errorType}
}

// NewValidation builds a validation error; input is rejected before any mutation.
func NewValidation(errorType, message string) *CustomError {
	return &CustomError{Kind: KindValidation, Message: message, Type: errorType}
}

// NewConflict builds a conflict error for a lost uniqueness race.
func NewConflict(errorType, message string) *CustomError {
	return &CustomError{Kind: KindConflict, Message: message, Type: errorType}
}

// NewUpstream wraps a data-store or blob-store failure.
func NewUpstream(errorType string, err error) *CustomError {
	return &CustomError{Kind: KindUpstream, Message: "upstream dependency failed", Type: errorType, Err: err}
}

// NewForbidden builds an authorization failure for the HTTP middleware.
func NewForbidden(errorType, message string) *CustomError {
	return &CustomError{Kind: KindForbidden, Message: message, Type: errorType}
}

// KindOf extracts the kind from an error chain, or "" for untyped errors.
func KindOf(err error) Kind {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found engine error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation engine error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err is a conflict engine error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }
