// Package translate turns provider failures into domain errors with stable statuses.
package translate

import (
	"context"
	"errors"
	"log/slog"

	"llmchess/internal/server/core"
	"llmchess/internal/server/provider"
)

type Translator struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Translator {
	if log == nil {
		log = slog.Default()
	}
	return &Translator{log: log}
}

// Translate classifies err; the branch order matters: a missing credential is
// reported before anything the provider said, and rate limits win over auth.
func (t *Translator) Translate(err error) *core.DomainError {
	if err == nil {
		return nil
	}

	var de *core.DomainError
	if errors.As(err, &de) {
		t.logged(de, "")
		return de
	}

	var pe *provider.Error
	if errors.As(err, &pe) {
		return t.logged(core.NewError(kindFor(pe.Kind), err), pe.Provider)
	}

	if provider.IsConnectionError(err) {
		return t.logged(core.NewError(core.ErrProviderUnreachable, err), "")
	}
	return t.logged(core.NewError(core.ErrUnknown, err), "")
}

func kindFor(k provider.Kind) core.Kind {
	switch k {
	case provider.KindRateLimit:
		return core.ErrProviderRateLimited
	case provider.KindAuth:
		return core.ErrCredentialInvalid
	case provider.KindConnection:
		return core.ErrProviderUnreachable
	case provider.KindMalformed:
		return core.ErrResponseUnparseable
	default:
		return core.ErrUnknown
	}
}

func (t *Translator) logged(de *core.DomainError, providerName string) *core.DomainError {
	level := slog.LevelWarn
	if de.Status() >= 500 {
		level = slog.LevelError
	}
	t.log.Log(context.Background(), level, "provider error translated",
		"kind", de.Kind,
		"status", de.Status(),
		"provider", providerName,
		"err", de.Err)
	return de
}
