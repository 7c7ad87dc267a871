package core

import (
	"errors"
	"net/http"
)

// Kind tags a DomainError. Values double as the machine-readable code in error bodies.
type Kind string

const (
	ErrInvalidPosition     Kind = "INVALID_POSITION"
	ErrGameAlreadyOver     Kind = "GAME_ALREADY_OVER"
	ErrNoLegalMoves        Kind = "NO_LEGAL_MOVES"
	ErrCredentialMissing   Kind = "CREDENTIAL_MISSING"
	ErrCredentialInvalid   Kind = "CREDENTIAL_INVALID"
	ErrProviderRateLimited Kind = "PROVIDER_RATE_LIMITED"
	ErrProviderUnreachable Kind = "PROVIDER_UNREACHABLE"
	ErrResponseUnparseable Kind = "RESPONSE_UNPARSEABLE"
	ErrUnknown             Kind = "UNKNOWN"
)

// Codes used only at the HTTP edge, outside the domain taxonomy
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrNotFound          = "NOT_FOUND"
)

// Client-visible details, stable across releases
const (
	DetailInvalidPosition     = "Invalid FEN string"
	DetailGameAlreadyOver     = "Game is over"
	DetailNoLegalMoves        = "No legal moves available"
	DetailCredentialMissing   = "Provider API key is missing. Please configure it in the settings."
	DetailCredentialInvalid   = "Provider API key is invalid or expired. Please check your settings."
	DetailProviderRateLimited = "Provider API quota exceeded or rate limit reached. Please check your plan limits."
	DetailProviderUnreachable = "Failed to connect to the provider API. Please check your internet connection."
	DetailResponseUnparseable = "Failed to parse LLM response"
	DetailUnknown             = "Internal server error"
)

var defaultDetails = map[Kind]string{
	ErrInvalidPosition:     DetailInvalidPosition,
	ErrGameAlreadyOver:     DetailGameAlreadyOver,
	ErrNoLegalMoves:        DetailNoLegalMoves,
	ErrCredentialMissing:   DetailCredentialMissing,
	ErrCredentialInvalid:   DetailCredentialInvalid,
	ErrProviderRateLimited: DetailProviderRateLimited,
	ErrProviderUnreachable: DetailProviderUnreachable,
	ErrResponseUnparseable: DetailResponseUnparseable,
	ErrUnknown:             DetailUnknown,
}

// DomainError is the only failure type that leaves the processor.
// Detail is safe to show to clients; Err keeps the underlying cause for logs.
type DomainError struct {
	Kind   Kind
	Detail string
	Err    error
}

// NewError builds a DomainError with the default detail for its kind
func NewError(kind Kind, cause error) *DomainError {
	return &DomainError{Kind: kind, Detail: defaultDetails[kind], Err: cause}
}

func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status returns the HTTP status clients branch on
func (e *DomainError) Status() int {
	return StatusFor(e.Kind)
}

// Response renders the client-facing body
func (e *DomainError) Response() ErrorResponse {
	detail := e.Detail
	if detail == "" {
		detail = defaultDetails[e.Kind]
	}
	return ErrorResponse{Detail: detail, Code: string(e.Kind)}
}

// StatusFor maps a kind to its HTTP status
func StatusFor(kind Kind) int {
	switch kind {
	case ErrInvalidPosition, ErrGameAlreadyOver, ErrNoLegalMoves:
		return http.StatusBadRequest
	case ErrCredentialMissing:
		return http.StatusPreconditionFailed
	case ErrCredentialInvalid:
		return http.StatusUnauthorized
	case ErrProviderRateLimited:
		return http.StatusTooManyRequests
	case ErrProviderUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindOf classifies any error, Unknown when it is not a DomainError
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrUnknown
}

// IsKind reports whether err is a DomainError of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
