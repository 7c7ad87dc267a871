// Package selector asks an LLM for a move while restricting the answer to the
// legal moves of the position.
package selector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/position"
	"llmchess/internal/server/provider"
)

const (
	DefaultTimeout = 30 * time.Second
	contractName   = "select_move"

	SystemPrompt = "You are a grandmaster chess player. Analyze the given FEN and select the best legal move " +
		"from the available legal moves. Provide your reasoning and the chosen move."
)

// MoveChoice is a move guaranteed to be legal in the position it was selected for
type MoveChoice struct {
	Move      position.LegalMove
	Reasoning string
}

// Selector performs one constrained provider call per SelectMove
type Selector struct {
	provider provider.Provider
	timeout  time.Duration
	log      *slog.Logger
}

func New(p provider.Provider, timeout time.Duration, log *slog.Logger) *Selector {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Selector{provider: p, timeout: timeout, log: log}
}

// contract pairs the wire contract with the set it was built from
type contract struct {
	wire provider.Contract
	set  *position.LegalMoveSet
}

func newContract(set *position.LegalMoveSet) contract {
	return contract{
		wire: provider.Contract{
			Name:        contractName,
			Description: "Play one chess move chosen from the legal moves",
			Moves:       set.IDs(),
		},
		set: set,
	}
}

// SelectMove returns a MoveChoice from set or a *provider.Error.
// An empty model selects the provider default.
func (s *Selector) SelectMove(ctx context.Context, pos *position.Position, set *position.LegalMoveSet, model string, cred credential.Credential) (MoveChoice, error) {
	c := newContract(set)
	if model == "" {
		model = s.provider.DefaultModel()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	res, err := s.provider.Complete(ctx, provider.Request{
		Model:      model,
		System:     SystemPrompt,
		User:       "FEN: " + pos.FEN(),
		Contract:   c.wire,
		Credential: cred,
	})
	s.log.Debug("provider call finished",
		"provider", s.provider.Name(),
		"model", model,
		"legal_moves", set.Len(),
		"duration", time.Since(start),
		"err", err)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && provider.KindOf(err) != provider.KindConnection {
			return MoveChoice{}, provider.NewError(provider.KindConnection, s.provider.Name(),
				fmt.Errorf("no reply within %s: %w", s.timeout, err))
		}
		var pe *provider.Error
		if !errors.As(err, &pe) {
			err = provider.NewError(provider.KindOther, s.provider.Name(), err)
		}
		return MoveChoice{}, err
	}

	return s.normalize(res, c)
}

// normalize collapses both result shapes into a MoveChoice, validating membership
func (s *Selector) normalize(res provider.Result, c contract) (MoveChoice, error) {
	var id, reasoning string
	switch {
	case res.Structured != nil:
		id = res.Structured.Move.Value
		reasoning = res.Structured.Reasoning
	case res.Mapping != nil:
		raw, ok := res.Mapping[provider.FieldMove]
		if !ok {
			return MoveChoice{}, s.malformed(errors.New("mapping has no move key"))
		}
		id, ok = raw.(string)
		if !ok {
			return MoveChoice{}, s.malformed(fmt.Errorf("move has type %T", raw))
		}
		reasoning, _ = res.Mapping[provider.FieldReasoning].(string)
	default:
		return MoveChoice{}, s.malformed(errors.New("empty response"))
	}

	move, err := c.set.Lookup(id)
	if err != nil {
		return MoveChoice{}, s.malformed(err)
	}
	return MoveChoice{Move: move, Reasoning: strings.TrimSpace(reasoning)}, nil
}

func (s *Selector) malformed(err error) error {
	return provider.NewError(provider.KindMalformed, s.provider.Name(), err)
}
