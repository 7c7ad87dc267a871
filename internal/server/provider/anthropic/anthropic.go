// Package anthropic adapts the Anthropic Messages API to provider.Provider.
// The move contract is exposed as the input schema of a single tool and the model
// is forced to call it, so the move arrives as typed tool input.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/provider"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	Name               = "anthropic"
	DefaultModel       = "claude-3-5-haiku-latest"
	DefaultTemperature = 0.2
	maxTokens          = 1024
	listLimit          = 100
)

var Policy = provider.ModelPolicy{
	AllowPrefixes: []string{"claude-"},
	Fallback:      []string{"claude-3-5-haiku-latest", "claude-3-7-sonnet-latest", "claude-sonnet-4-20250514"},
}

type Adapter struct {
	model       string
	temperature float64
	opts        []option.RequestOption
}

type Option func(*Adapter)

func WithBaseURL(url string) Option {
	return func(a *Adapter) {
		if url != "" {
			a.opts = append(a.opts, option.WithBaseURL(url))
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) {
		a.opts = append(a.opts, option.WithHTTPClient(c))
	}
}

func WithTemperature(t float64) Option {
	return func(a *Adapter) {
		a.temperature = t
	}
}

func New(model string, opts ...Option) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	a := &Adapter{model: model, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string                      { return Name }
func (a *Adapter) DefaultModel() string              { return a.model }
func (a *Adapter) ModelPolicy() provider.ModelPolicy { return Policy }

func (a *Adapter) client(cred credential.Credential) *sdk.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cred.Key()),
		option.WithMaxRetries(0),
	}
	c := sdk.NewClient(append(opts, a.opts...)...)
	return &c
}

// toolInput mirrors the contract's properties
type toolInput struct {
	Move      string `json:"move"`
	Reasoning string `json:"reasoning"`
}

func (a *Adapter) Complete(ctx context.Context, req provider.Request) (provider.Result, error) {
	if req.Credential.IsZero() {
		return provider.Result{}, provider.NewError(provider.KindAuth, Name, errors.New("no credential"))
	}
	model := req.Model
	if model == "" {
		model = a.model
	}

	tool := sdk.ToolParam{
		Name:        req.Contract.Name,
		Description: sdk.String(req.Contract.Description),
		InputSchema: sdk.ToolInputSchemaParam{
			Properties: req.Contract.Properties(),
			Required:   req.Contract.Required(),
		},
	}
	params := sdk.MessageNewParams{
		Model:       sdk.Model(model),
		MaxTokens:   maxTokens,
		Temperature: sdk.Float(a.temperature),
		System:      []sdk.TextBlockParam{{Text: req.System}},
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.User))},
		Tools:       []sdk.ToolUnionParam{{OfTool: &tool}},
		ToolChoice:  sdk.ToolChoiceParamOfTool(req.Contract.Name),
	}

	resp, err := a.client(req.Credential).Messages.New(ctx, params)
	if err != nil {
		return provider.Result{}, classify(err)
	}

	for _, block := range resp.Content {
		if block.Type != "tool_use" || block.Name != req.Contract.Name {
			continue
		}
		var in toolInput
		if err := json.Unmarshal(block.Input, &in); err != nil {
			return provider.Result{}, provider.NewError(provider.KindMalformed, Name, fmt.Errorf("decode tool input: %w", err))
		}
		return provider.Structured(in.Move, in.Reasoning), nil
	}
	// text-only reply, the tool was not called
	return provider.Result{}, nil
}

func (a *Adapter) ListModels(ctx context.Context, cred credential.Credential) ([]string, error) {
	pager := a.client(cred).Models.ListAutoPaging(ctx, sdk.ModelListParams{Limit: sdk.Int(listLimit)})
	var ids []string
	for pager.Next() {
		ids = append(ids, pager.Current().ID)
	}
	if err := pager.Err(); err != nil {
		return nil, classify(err)
	}
	return ids, nil
}

// Probe fetches a single model entry
func (a *Adapter) Probe(ctx context.Context, cred credential.Credential) error {
	_, err := a.client(cred).Models.List(ctx, sdk.ModelListParams{Limit: sdk.Int(1)})
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return &provider.Error{
			Kind:     provider.KindForStatus(apiErr.StatusCode),
			Provider: Name,
			Status:   apiErr.StatusCode,
			Err:      err,
		}
	}
	if provider.IsConnectionError(err) {
		return provider.NewError(provider.KindConnection, Name, err)
	}
	return provider.NewError(provider.KindOther, Name, err)
}
