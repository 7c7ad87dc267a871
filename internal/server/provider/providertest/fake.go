// Package providertest offers an in-memory provider.Provider for tests.
package providertest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/provider"
)

// Fake answers every call from its hooks and counts the calls it receives
type Fake struct {
	ProviderName string
	Model        string
	Policy       provider.ModelPolicy

	CompleteFunc func(ctx context.Context, req provider.Request) (provider.Result, error)
	ModelsFunc   func(ctx context.Context, cred credential.Credential) ([]string, error)
	ProbeFunc    func(ctx context.Context, cred credential.Credential) error

	completeCalls atomic.Int32
	modelCalls    atomic.Int32
	probeCalls    atomic.Int32

	mu   sync.Mutex
	last provider.Request
}

func (f *Fake) Name() string {
	if f.ProviderName == "" {
		return "fake"
	}
	return f.ProviderName
}

func (f *Fake) DefaultModel() string {
	if f.Model == "" {
		return "fake-model"
	}
	return f.Model
}

func (f *Fake) ModelPolicy() provider.ModelPolicy { return f.Policy }

func (f *Fake) Complete(ctx context.Context, req provider.Request) (provider.Result, error) {
	f.completeCalls.Add(1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.CompleteFunc == nil {
		return provider.Result{}, nil
	}
	return f.CompleteFunc(ctx, req)
}

func (f *Fake) ListModels(ctx context.Context, cred credential.Credential) ([]string, error) {
	f.modelCalls.Add(1)
	if f.ModelsFunc == nil {
		return nil, nil
	}
	return f.ModelsFunc(ctx, cred)
}

func (f *Fake) Probe(ctx context.Context, cred credential.Credential) error {
	f.probeCalls.Add(1)
	if f.ProbeFunc == nil {
		return nil
	}
	return f.ProbeFunc(ctx, cred)
}

func (f *Fake) CompleteCalls() int { return int(f.completeCalls.Load()) }
func (f *Fake) ModelCalls() int    { return int(f.modelCalls.Load()) }
func (f *Fake) ProbeCalls() int    { return int(f.probeCalls.Load()) }

// LastRequest returns the most recent Complete request
func (f *Fake) LastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Reply makes Complete return r
func Reply(r provider.Result) func(context.Context, provider.Request) (provider.Result, error) {
	return func(context.Context, provider.Request) (provider.Result, error) { return r, nil }
}

// Fail makes Complete return a classified error
func Fail(kind provider.Kind) func(context.Context, provider.Request) (provider.Result, error) {
	return func(context.Context, provider.Request) (provider.Result, error) {
		return provider.Result{}, provider.NewError(kind, "fake", errSimulated)
	}
}

var errSimulated = errors.New("simulated provider failure")
