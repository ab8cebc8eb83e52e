package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// ItemCandidate is a disambiguation hint attached to a NotFoundError when
// resolution produced several plausible items but no clear winner.
type ItemCandidate struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}

// Domain error types implementing HTTPError interface
type (
	// ValidationError indicates invalid caller input. It is raised before
	// any upstream call is made.
	ValidationError struct {
		Message string
	}

	// AuthenticationError indicates the caller's credential was rejected
	// by the upstream library API.
	AuthenticationError struct {
		Message string
	}

	// NotFoundError indicates resolution produced zero matches. This is an
	// expected outcome, not a fault; Suggestions and Candidates carry
	// disambiguation material when available.
	NotFoundError struct {
		Message     string
		Suggestions []string
		Candidates  []ItemCandidate
	}

	// UpstreamError indicates an upstream call failed or returned an
	// unexpected shape.
	UpstreamError struct {
		Message string
	}

	// ExtractionError indicates an attachment was downloaded but text
	// parsing failed or produced empty text.
	ExtractionError struct {
		Message string
	}
)

// Error implementations
func (e *ValidationError) Error() string     { return e.Message }
func (e *AuthenticationError) Error() string { return e.Message }
func (e *NotFoundError) Error() string       { return e.Message }
func (e *UpstreamError) Error() string       { return e.Message }
func (e *ExtractionError) Error() string     { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *ValidationError) StatusCode() int     { return http.StatusBadRequest }
func (e *AuthenticationError) StatusCode() int { return http.StatusUnauthorized }
func (e *NotFoundError) StatusCode() int       { return http.StatusNotFound }
func (e *UpstreamError) StatusCode() int       { return http.StatusBadGateway }
func (e *ExtractionError) StatusCode() int     { return http.StatusUnprocessableEntity }

// Sentinel errors - use with errors.Is()
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrNotFound       = errors.New("not found")
	ErrUpstream       = errors.New("upstream request failed")
	ErrExtraction     = errors.New("text extraction failed")
)

// Is implementations let errors.Is() match typed errors against sentinels.
func (e *ValidationError) Is(target error) bool     { return target == ErrValidation }
func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }
func (e *NotFoundError) Is(target error) bool       { return target == ErrNotFound }
func (e *UpstreamError) Is(target error) bool       { return target == ErrUpstream }
func (e *ExtractionError) Is(target error) bool     { return target == ErrExtraction }
