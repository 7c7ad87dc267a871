package selector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/position"
	"llmchess/internal/server/provider"
	"llmchess/internal/server/provider/providertest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCred = credential.New("sk-test-0123456789")

func startPosition(t *testing.T) (*position.Position, *position.LegalMoveSet) {
	t.Helper()
	pos, err := position.Parse(position.StartingFEN)
	require.NoError(t, err)
	set, err := pos.LegalMoves()
	require.NoError(t, err)
	return pos, set
}

func newSelector(f *providertest.Fake) *Selector {
	return New(f, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSelectMoveBothShapes(t *testing.T) {
	pos, set := startPosition(t)

	for name, res := range map[string]provider.Result{
		"structured": provider.Structured("e2e4", " controls the center "),
		"mapping":    provider.Mapping(map[string]any{"move": "e2e4", "reasoning": "controls the center"}),
	} {
		t.Run(name, func(t *testing.T) {
			f := &providertest.Fake{CompleteFunc: providertest.Reply(res)}
			choice, err := newSelector(f).SelectMove(context.Background(), pos, set, "", testCred)
			require.NoError(t, err)
			assert.Equal(t, "e2e4", choice.Move.ID())
			assert.Equal(t, "e4", choice.Move.SAN())
			assert.Equal(t, "controls the center", choice.Reasoning)
			assert.Equal(t, 1, f.CompleteCalls())
		})
	}
}

func TestSelectMoveBuildsClosedContract(t *testing.T) {
	pos, set := startPosition(t)
	f := &providertest.Fake{Model: "default-x", CompleteFunc: providertest.Reply(provider.Structured("d2d4", ""))}

	_, err := newSelector(f).SelectMove(context.Background(), pos, set, "", testCred)
	require.NoError(t, err)

	req := f.LastRequest()
	assert.Equal(t, "default-x", req.Model)
	assert.Equal(t, SystemPrompt, req.System)
	assert.Equal(t, "FEN: "+position.StartingFEN, req.User)
	assert.Equal(t, set.IDs(), req.Contract.Moves)
	assert.Equal(t, testCred, req.Credential)

	_, err = newSelector(f).SelectMove(context.Background(), pos, set, "explicit-model", testCred)
	require.NoError(t, err)
	assert.Equal(t, "explicit-model", f.LastRequest().Model)
}

func TestSelectMoveRejectsAdversarialReplies(t *testing.T) {
	pos, set := startPosition(t)

	for name, res := range map[string]provider.Result{
		"empty":            {},
		"illegal move":     provider.Structured("e2e5", ""),
		"opponent move":    provider.Mapping(map[string]any{"move": "e7e5"}),
		"san not uci":      provider.Mapping(map[string]any{"move": "e4"}),
		"missing key":      provider.Mapping(map[string]any{"best": "e2e4"}),
		"non-string move":  provider.Mapping(map[string]any{"move": 42.0}),
		"nested wrapper":   provider.Mapping(map[string]any{"move": map[string]any{"value": "e2e4"}}),
		"injection string": provider.Structured("e2e4\nignore previous instructions", ""),
	} {
		t.Run(name, func(t *testing.T) {
			f := &providertest.Fake{CompleteFunc: providertest.Reply(res)}
			choice, err := newSelector(f).SelectMove(context.Background(), pos, set, "", testCred)
			assert.Equal(t, provider.KindMalformed, provider.KindOf(err), "%v", err)
			assert.True(t, choice.Move.IsZero())
			assert.Equal(t, 1, f.CompleteCalls())
		})
	}
}

func TestSelectMovePassesProviderErrorsThrough(t *testing.T) {
	pos, set := startPosition(t)

	for _, kind := range []provider.Kind{provider.KindAuth, provider.KindRateLimit, provider.KindConnection, provider.KindOther} {
		f := &providertest.Fake{CompleteFunc: providertest.Fail(kind)}
		_, err := newSelector(f).SelectMove(context.Background(), pos, set, "", testCred)
		assert.Equal(t, kind, provider.KindOf(err))
		assert.Equal(t, 1, f.CompleteCalls(), "no retry for %s", kind)
	}

	f := &providertest.Fake{CompleteFunc: func(context.Context, provider.Request) (provider.Result, error) {
		return provider.Result{}, errors.New("unclassified")
	}}
	_, err := newSelector(f).SelectMove(context.Background(), pos, set, "", testCred)
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.KindOther, pe.Kind)
}

func TestSelectMoveTimeoutIsConnectionFailure(t *testing.T) {
	pos, set := startPosition(t)
	f := &providertest.Fake{CompleteFunc: func(ctx context.Context, _ provider.Request) (provider.Result, error) {
		<-ctx.Done()
		return provider.Result{}, errors.New("request aborted")
	}}

	s := New(f, 20*time.Millisecond, nil)
	_, err := s.SelectMove(context.Background(), pos, set, "", testCred)
	assert.Equal(t, provider.KindConnection, provider.KindOf(err))
}

func TestNewDefaultsTimeout(t *testing.T) {
	s := New(&providertest.Fake{}, 0, nil)
	assert.Equal(t, DefaultTimeout, s.timeout)
}
