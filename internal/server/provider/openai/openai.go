// Package openai adapts the OpenAI chat completions API to provider.Provider.
// The closed move set is enforced with a strict JSON-schema response format; the
// reply is decoded into a plain mapping.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/provider"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	Name               = "openai"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
)

// Policy keeps chat-capable models only
var Policy = provider.ModelPolicy{
	AllowPrefixes:     []string{"gpt-", "o1-", "o3-", "o4-", "chatgpt-"},
	ExcludeSubstrings: []string{"-vision", "-instruct", "realtime", "audio", "embedding", "tts", "transcribe", "image", "dall-e", "search"},
	Fallback:          []string{"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"},
}

// Adapter builds a fresh SDK client per call because the credential is per request
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

// Complete sends one chat completion whose output must match the contract schema
func (a *Adapter) Complete(ctx context.Context, req provider.Request) (provider.Result, error) {
	if req.Credential.IsZero() {
		return provider.Result{}, provider.NewError(provider.KindAuth, Name, errors.New("no credential"))
	}
	model := req.Model
	if model == "" {
		model = a.model
	}

	params := sdk.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(req.System),
			sdk.UserMessage(req.User),
		},
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Contract.Name,
					Description: sdk.String(req.Contract.Description),
					Strict:      sdk.Bool(true),
					Schema:      req.Contract.Schema(),
				},
			},
		},
	}
	// reasoning models reject sampling parameters
	if !isReasoningModel(model) {
		params.Temperature = sdk.Float(a.temperature)
	}

	resp, err := a.client(req.Credential).Chat.Completions.New(ctx, params)
	if err != nil {
		return provider.Result{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return provider.Result{}, nil
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return provider.Result{}, provider.NewError(provider.KindMalformed, Name, fmt.Errorf("model refused: %s", msg.Refusal))
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return provider.Result{}, nil
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return provider.Result{}, provider.NewError(provider.KindMalformed, Name, fmt.Errorf("decode content: %w", err))
	}
	return provider.Mapping(body), nil
}

func (a *Adapter) ListModels(ctx context.Context, cred credential.Credential) ([]string, error) {
	page, err := a.client(cred).Models.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (a *Adapter) Probe(ctx context.Context, cred credential.Credential) error {
	_, err := a.ListModels(ctx, cred)
	return err
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

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4"} {
		if model == p || strings.HasPrefix(model, p+"-") {
			return true
		}
	}
	return false
}
