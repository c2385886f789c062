// Package errors defines the domain error taxonomy surfaced at the API
// boundary. Internal causes are wrapped but never rendered to clients.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError for boundary mapping.
type Kind int

const (
	KindUnknown Kind = iota
	// KindClient covers unknown merchants, cardholders and bad codes.
	KindClient
	// KindValidation is a malformed request rejected before store access.
	KindValidation
	// KindStore is an underlying persistence failure.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindValidation:
		return "validation"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code so wrapped sentinels compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap returns a copy of e carrying cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{Kind: e.Kind, Code: e.Code, Message: e.Message, Fields: e.Fields, Err: cause}
}

func NewClientError(code, message string) *DomainError {
	return &DomainError{Kind: KindClient, Code: code, Message: message}
}

func NewValidationError(message string, fields map[string]string) *DomainError {
	return &DomainError{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: message, Fields: fields}
}

// NewStoreError wraps a persistence failure for operation op.
func NewStoreError(op string, err error) *DomainError {
	return &DomainError{Kind: KindStore, Code: "STORE_ERROR", Message: op, Err: err}
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// As is a shorthand for extracting a DomainError.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	ok := stderrors.As(err, &de)
	return de, ok
}
