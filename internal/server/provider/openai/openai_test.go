package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content, "refusal": nil},
		}},
	})
	return string(body)
}

func newTestAdapter(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("", WithBaseURL(srv.URL+"/v1/"))
}

func testRequest() provider.Request {
	return provider.Request{
		System:     "pick a move",
		User:       "FEN: startpos",
		Credential: credential.New("sk-test-key-123456"),
		Contract:   provider.Contract{Name: "chess_move", Description: "move", Moves: []string{"e2e4", "d2d4"}},
	}
}

func TestCompleteSendsStrictSchema(t *testing.T) {
	var sent map[string]any
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key-123456", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"move":"e2e4","reasoning":"center"}`)))
	})

	res, err := a.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Mapping)
	assert.Nil(t, res.Structured)
	assert.Equal(t, "e2e4", res.Mapping["move"])
	assert.Equal(t, "center", res.Mapping["reasoning"])

	assert.Equal(t, DefaultModel, sent["model"])
	assert.InDelta(t, DefaultTemperature, sent["temperature"], 1e-9)

	format := sent["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	schema := format["json_schema"].(map[string]any)
	assert.Equal(t, true, schema["strict"])
	props := schema["schema"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, []any{"e2e4", "d2d4"}, props["move"].(map[string]any)["enum"])
}

func TestCompleteReasoningModelOmitsTemperature(t *testing.T) {
	var sent map[string]any
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"move":"d2d4","reasoning":""}`)))
	})

	req := testRequest()
	req.Model = "o3-mini"
	_, err := a.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", sent["model"])
	_, hasTemp := sent["temperature"]
	assert.False(t, hasTemp)
}

func TestCompleteEmptyAndMalformedBodies(t *testing.T) {
	reply := func(content string) *Adapter {
		return newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(completionBody(content)))
		})
	}

	res, err := reply("").Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, res.IsEmpty())

	_, err = reply("e2e4 is best").Complete(context.Background(), testRequest())
	assert.Equal(t, provider.KindMalformed, provider.KindOf(err))
}

func TestCompleteClassifiesStatus(t *testing.T) {
	for status, want := range map[int]provider.Kind{
		http.StatusTooManyRequests:     provider.KindRateLimit,
		http.StatusUnauthorized:        provider.KindAuth,
		http.StatusForbidden:           provider.KindAuth,
		http.StatusInternalServerError: provider.KindOther,
	} {
		var calls atomic.Int32
		a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"x","code":"x"}}`))
		})

		_, err := a.Complete(context.Background(), testRequest())
		require.Error(t, err)
		assert.Equal(t, want, provider.KindOf(err), "status %d", status)
		assert.EqualValues(t, 1, calls.Load(), "status %d must not be retried", status)
	}
}

func TestCompleteConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := New("", WithBaseURL(url+"/v1/"))
	_, err := a.Complete(context.Background(), testRequest())
	assert.Equal(t, provider.KindConnection, provider.KindOf(err))
}

func TestCompleteWithoutCredential(t *testing.T) {
	a := New("")
	req := testRequest()
	req.Credential = credential.Credential{}
	_, err := a.Complete(context.Background(), req)
	assert.Equal(t, provider.KindAuth, provider.KindOf(err))
}

func TestListModelsAndProbe(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk-good-key-0000" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o","object":"model","created":1,"owned_by":"openai"},
			{"id":"whisper-1","object":"model","created":1,"owned_by":"openai"}]}`))
	})

	ids, err := a.ListModels(context.Background(), credential.New("sk-good-key-0000"))
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "whisper-1"}, ids)

	assert.NoError(t, a.Probe(context.Background(), credential.New("sk-good-key-0000")))
	err = a.Probe(context.Background(), credential.New("sk-bad-key-0000"))
	assert.Equal(t, provider.KindAuth, provider.KindOf(err))
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o1-mini"))
	assert.True(t, isReasoningModel("o3"))
	assert.False(t, isReasoningModel("gpt-4o"))
	assert.False(t, isReasoningModel("omni"))
}
