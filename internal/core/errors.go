package core

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	// ErrorKindCredential marks missing/empty input the user can correct.
	ErrorKindCredential ErrorKind = "credential"
	// ErrorKindUpstream marks a rejection by the provider API; the status
	// code mirrors the provider's response.
	ErrorKindUpstream ErrorKind = "upstream"
	// ErrorKindNetwork marks a transport-level failure (DNS, timeout).
	ErrorKindNetwork ErrorKind = "network"
)

// FetchError classifies provider fetch failures so the HTTP layer can mirror
// them without inspecting provider internals.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *FetchError) Unwrap() error { return e.Err }

func CredentialError(message string) *FetchError {
	return &FetchError{Kind: ErrorKindCredential, StatusCode: http.StatusBadRequest, Message: message}
}

// UpstreamError carries the provider's own message where one was extractable;
// callers fall back to "API error: {status}" otherwise.
func UpstreamError(status int, message string) *FetchError {
	if message == "" {
		message = fmt.Sprintf("API error: %d", status)
	}
	return &FetchError{Kind: ErrorKindUpstream, StatusCode: status, Message: message}
}

func NetworkError(message string, err error) *FetchError {
	return &FetchError{Kind: ErrorKindNetwork, StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}

// AsFetchError unwraps err to a *FetchError, wrapping unknown errors as
// network failures so every adapter error maps onto the taxonomy.
func AsFetchError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return NetworkError("unexpected error", err)
}
