package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Flow errors. The HTTP layer maps each to its OAuth2 error code.
var (
	ErrInvalidRequest          = errors.New("invalid_request")
	ErrInvalidClient           = errors.New("invalid_client")
	ErrInvalidGrant            = errors.New("invalid_grant")
	ErrUnauthorizedClient      = errors.New("unauthorized_client")
	ErrUnsupportedGrantType    = errors.New("unsupported_grant_type")
	ErrUnsupportedResponseType = errors.New("unsupported_response_type")
	ErrInvalidScope            = errors.New("invalid_scope")
	ErrAccessDenied            = errors.New("access_denied")

	// ErrRedirectURIMismatch is never delivered to the redirect_uri since the
	// URI itself is what failed.
	ErrRedirectURIMismatch = errors.New("redirect_uri_mismatch")

	ErrLoginRequired      = errors.New("login_required")
	ErrConsentRequired    = errors.New("consent_required")
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrCodeExpired is an invalid_grant: expired and unknown codes look the
	// same to the client.
	ErrCodeExpired = fmt.Errorf("%w: code expired", ErrInvalidGrant)
)

// RedirectError is a failure that happened after the client and
// redirect_uri were validated, so it is reported to the client by
// redirecting the user agent back with error parameters.
type RedirectError struct {
	Err         error
	Description string
	RedirectURI string
	State       string
}

func (e *RedirectError) Error() string {
	if e.Description == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Description
}

func (e *RedirectError) Unwrap() error { return e.Err }

// DefaultStoreTimeout bounds every store call made on a request path.
const DefaultStoreTimeout = 5 * time.Second

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, d)
}

func nowFunc(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now()
}
