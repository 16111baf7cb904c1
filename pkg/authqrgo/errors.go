package authqrgo

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation is returned when the backend rejects registration input.
	ErrValidation = errors.New("validation failed")
	// ErrAuth is returned when login credentials are rejected.
	ErrAuth = errors.New("invalid credentials")
	// ErrAuthExpired is returned when a gated call is rejected with 401.
	ErrAuthExpired = errors.New("session expired")
	// ErrVerification is returned when a QR payload is rejected for any
	// reason other than authentication.
	ErrVerification = errors.New("verification failed")
	// ErrTransport covers network failures and undecodable responses.
	ErrTransport = errors.New("transport error")
	// ErrUnexpectedStatus is returned for rejections that have no more
	// specific kind.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ResponseError is a non-2xx answer from the backend.
type ResponseError struct {
	Kind       error
	StatusCode int
	Detail     string
}

func (e *ResponseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (statusCode=%d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("%s (statusCode=%d): %s", e.Kind, e.StatusCode, e.Detail)
}

func (e *ResponseError) Unwrap() error {
	return e.Kind
}

// Detail returns the backend's explanation for err, if it carries one.
func Detail(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Detail
	}
	return ""
}

// StatusKinds maps status codes to error kinds for one operation. Statuses
// not listed fall back to the operation's default kind.
type StatusKinds struct {
	ByStatus map[int]error
	Default  error
}

func (sk StatusKinds) classify(statusCode int, detail string) error {
	kind, ok := sk.ByStatus[statusCode]
	if !ok {
		kind = sk.Default
	}
	if kind == nil {
		kind = ErrUnexpectedStatus
	}
	return &ResponseError{Kind: kind, StatusCode: statusCode, Detail: detail}
}

var gatedStatusKinds = StatusKinds{
	ByStatus: map[int]error{http.StatusUnauthorized: ErrAuthExpired},
}

var errEmptyToken = errors.New("backend returned an empty access token")

func newErrorResponseTypeAssertFailed(t string) error {
	return fmt.Errorf("%w: failed to type assert response data to %s", ErrTransport, t)
}

func newTransportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
