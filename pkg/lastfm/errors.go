package lastfm

import (
	"errors"
	"fmt"
)

// Error represents a Last.fm API error.
//
// The Error type provides structured error information including
// the Last.fm error code and message. Last.fm reports these in the
// response body, so a request can fail with an Error even when the
// HTTP transport succeeded.
type Error struct {
	Code    int    // Last.fm error code
	Message string // Error message from Last.fm
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Is checks if the target error is a Last.fm error.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Temporary returns true if the error is temporary.
//
// The following Last.fm error codes are considered temporary:
//   - 11: Service Offline - temporarily unavailable
//   - 16: Service Temporarily Unavailable
//   - 29: Rate Limit Exceeded
func (e *Error) Temporary() bool {
	switch e.Code {
	case ErrCodeServiceOffline, ErrCodeTempUnavailable, ErrCodeRateLimitExceeded:
		return true
	default:
		return false
	}
}

// Common Last.fm error codes.
const (
	ErrCodeInvalidService       = 2
	ErrCodeInvalidMethod        = 3
	ErrCodeAuthenticationFailed = 4
	ErrCodeInvalidFormat        = 5
	ErrCodeInvalidParameters    = 6
	ErrCodeInvalidResourceSpec  = 7
	ErrCodeOperationFailed      = 8
	ErrCodeInvalidSessionKey    = 9
	ErrCodeInvalidAPIKey        = 10
	ErrCodeServiceOffline       = 11
	ErrCodeSubscribersOnly      = 12
	ErrCodeInvalidSignature     = 13
	ErrCodeUnauthorizedToken    = 14
	ErrCodeExpiredToken         = 15
	ErrCodeTempUnavailable      = 16
	ErrCodeRateLimitExceeded    = 29
)

// Predefined errors for common cases.
var (
	// ErrInvalidConfig is returned when client configuration is invalid.
	ErrInvalidConfig = fmt.Errorf("lastfm: invalid configuration")

	// ErrMalformedResponse is returned when a response body cannot be
	// decoded into the expected shape.
	ErrMalformedResponse = fmt.Errorf("lastfm: malformed response")
)

// IsNotFound reports whether err is Last.fm's "user not found" error.
//
// The user.* methods report an unknown user as error 6 (invalid
// parameters) with a 200 or 404 status depending on the endpoint.
func IsNotFound(err error) bool {
	var lastfmErr *Error
	if !errors.As(err, &lastfmErr) {
		return false
	}
	return lastfmErr.Code == ErrCodeInvalidParameters
}
