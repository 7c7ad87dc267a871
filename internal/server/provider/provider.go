// Package provider defines the contract between the move selector and an LLM backend.
//
// Adapters translate a Request into one vendor call and hand back a Result, a two-variant
// union whose shape depends on how the vendor returns constrained output. Failures are
// reported as *Error so the caller can classify them without knowing the vendor SDK.
package provider

import (
	"context"
	"errors"
	"fmt"

	"llmchess/internal/server/credential"
)

// Provider is one LLM backend
type Provider interface {
	Name() string
	// DefaultModel is used when a request names no model
	DefaultModel() string
	// Complete performs exactly one call, the adapter must not retry
	Complete(ctx context.Context, req Request) (Result, error)
	ListModels(ctx context.Context, cred credential.Credential) ([]string, error)
	// Probe is the lightweight call used to validate a credential
	Probe(ctx context.Context, cred credential.Credential) error
	ModelPolicy() ModelPolicy
}

// Request carries everything an adapter needs for one constrained completion
type Request struct {
	Model      string
	System     string
	User       string
	Contract   Contract
	Credential credential.Credential
}

// ModelPolicy describes which listed models are conversational
type ModelPolicy struct {
	AllowPrefixes     []string
	ExcludeSubstrings []string
	Fallback          []string
}

// Kind classifies an adapter failure
type Kind string

const (
	KindAuth       Kind = "auth"
	KindRateLimit  Kind = "rate_limit"
	KindConnection Kind = "connection"
	KindMalformed  Kind = "malformed"
	KindOther      Kind = "other"
)

// Error is a classified adapter failure
type Error struct {
	Kind     Kind
	Provider string
	Status   int
	Err      error
}

func NewError(kind Kind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindOther when it is not an *Error
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}
