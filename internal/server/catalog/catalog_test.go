package catalog

import (
	"context"
	"errors"
	"testing"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/provider"
	"llmchess/internal/server/provider/anthropic"
	"llmchess/internal/server/provider/openai"
	"llmchess/internal/server/provider/providertest"

	"github.com/stretchr/testify/assert"
)

func listing(ids ...string) func(context.Context, credential.Credential) ([]string, error) {
	return func(context.Context, credential.Credential) ([]string, error) { return ids, nil }
}

func TestListModelsWithoutCredential(t *testing.T) {
	f := &providertest.Fake{Policy: openai.Policy, ModelsFunc: listing("gpt-4o")}
	got := New(f, nil).ListModels(context.Background(), credential.Credential{})

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, f.ModelCalls())
}

func TestListModelsFiltersOpenAI(t *testing.T) {
	f := &providertest.Fake{Policy: openai.Policy, ModelsFunc: listing(
		"gpt-4o", "gpt-4o-mini", "gpt-3.5-turbo", "gpt-4-vision-preview",
		"gpt-3.5-turbo-instruct", "gpt-4o-realtime-preview", "gpt-4o-audio-preview",
		"text-embedding-3-small", "dall-e-3", "whisper-1", "o1-mini", "gpt-4o",
	)}

	got := New(f, nil).ListModels(context.Background(), credential.New("sk-valid-000000"))
	assert.Equal(t, []string{"gpt-3.5-turbo", "gpt-4o", "gpt-4o-mini", "o1-mini"}, got)
}

func TestListModelsFiltersAnthropic(t *testing.T) {
	f := &providertest.Fake{Policy: anthropic.Policy, ModelsFunc: listing(
		"claude-sonnet-4-20250514", "claude-3-5-haiku-latest", "other-model",
	)}

	got := New(f, nil).ListModels(context.Background(), credential.New("sk-ant-000000"))
	assert.Equal(t, []string{"claude-3-5-haiku-latest", "claude-sonnet-4-20250514"}, got)
}

func TestListModelsFallsBackOnFailure(t *testing.T) {
	f := &providertest.Fake{
		Policy: openai.Policy,
		ModelsFunc: func(context.Context, credential.Credential) ([]string, error) {
			return nil, provider.NewError(provider.KindAuth, "openai", errors.New("invalid key"))
		},
	}

	got := New(f, nil).ListModels(context.Background(), credential.New("sk-bad-000000"))
	assert.Equal(t, []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"}, got)

	// callers may mutate the result without touching the policy
	got[0] = "changed"
	assert.Equal(t, "gpt-4o-mini", openai.Policy.Fallback[0])
}

func TestListModelsEmptyListing(t *testing.T) {
	f := &providertest.Fake{Policy: openai.Policy, ModelsFunc: listing()}
	got := New(f, nil).ListModels(context.Background(), credential.New("sk-valid-000000"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
