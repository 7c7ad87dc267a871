// Package credential holds the provider API key.
//
// A Store carries the process-wide default credential. Reads are lock-free and
// always observe either the previous or the next committed value; writers are
// serialized by a mutex that is held across the validation probe, so two
// concurrent validateAndCommit calls never interleave their commits.
package credential

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"llmchess/internal/server/core"
)

// Credential is an opaque provider API key. The zero value means "absent".
type Credential struct {
	key string
}

// New trims the key; an empty key yields the zero Credential
func New(key string) Credential {
	return Credential{key: strings.TrimSpace(key)}
}

func (c Credential) IsZero() bool {
	return c.key == ""
}

// Key exposes the raw key to provider adapters
func (c Credential) Key() string {
	return c.key
}

// String never prints the key
func (c Credential) String() string {
	if c.key == "" {
		return "<none>"
	}
	if len(c.key) <= 8 {
		return "****"
	}
	return c.key[:3] + "..." + c.key[len(c.key)-4:]
}

// LogValue keeps slog from printing the key
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Prober performs a minimal live call proving the provider accepts a key
type Prober interface {
	Probe(ctx context.Context, cred Credential) error
}

// ProberFunc adapts a function to Prober
type ProberFunc func(ctx context.Context, cred Credential) error

func (f ProberFunc) Probe(ctx context.Context, cred Credential) error {
	return f(ctx, cred)
}

// Store is the process-wide credential holder
type Store struct {
	current atomic.Pointer[Credential]
	writeMu sync.Mutex
	prober  Prober
	log     *slog.Logger
}

func NewStore(prober Prober, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{prober: prober, log: log}
}

// Get returns the committed credential and whether one is present
func (s *Store) Get() (Credential, bool) {
	c := s.current.Load()
	if c == nil || c.IsZero() {
		return Credential{}, false
	}
	return *c, true
}

// Set replaces the credential without probing; the zero Credential clears it
func (s *Store) Set(c Credential) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.store(c)
}

// Clear removes the committed credential
func (s *Store) Clear() {
	s.Set(Credential{})
}

// Configured reports whether a credential is committed
func (s *Store) Configured() bool {
	_, ok := s.Get()
	return ok
}

// Validate probes a candidate without committing it
func (s *Store) Validate(ctx context.Context, candidate Credential) error {
	if candidate.IsZero() {
		return core.NewError(core.ErrCredentialMissing, fmt.Errorf("empty candidate"))
	}
	if s.prober == nil {
		return core.NewError(core.ErrCredentialInvalid, fmt.Errorf("no prober configured"))
	}
	if err := s.prober.Probe(ctx, candidate); err != nil {
		s.log.Warn("credential probe failed", "credential", candidate, "err", err)
		return core.NewError(core.ErrCredentialInvalid, err)
	}
	return nil
}

// ValidateAndCommit probes the candidate and commits it only on success.
// On failure the store is left unchanged.
func (s *Store) ValidateAndCommit(ctx context.Context, candidate Credential) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.Validate(ctx, candidate); err != nil {
		return err
	}
	s.store(candidate)
	s.log.Info("credential committed", "credential", candidate)
	return nil
}

// Bootstrap runs the startup path: probe once, leave the store empty on failure.
// It never returns an error so a bad key cannot stop the process.
func (s *Store) Bootstrap(ctx context.Context, candidate Credential) bool {
	if candidate.IsZero() {
		s.log.Info("no startup credential supplied")
		return false
	}
	if err := s.ValidateAndCommit(ctx, candidate); err != nil {
		s.Clear()
		s.log.Warn("startup credential rejected, store left empty", "credential", candidate)
		return false
	}
	return true
}

func (s *Store) store(c Credential) {
	if c.IsZero() {
		s.current.Store(nil)
		return
	}
	s.current.Store(&c)
}

// Resolve picks the per-request credential when present, else the store default
func Resolve(requestCred Credential, store *Store) (Credential, bool) {
	if !requestCred.IsZero() {
		return requestCred, true
	}
	if store == nil {
		return Credential{}, false
	}
	return store.Get()
}
