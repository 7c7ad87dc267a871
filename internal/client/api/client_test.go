package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL + "/")
	c.Out = io.Discard
	return c
}

func TestMoveSendsHeadersAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/move", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "sk-client-0000", r.Header.Get("X-API-Key"))

		var req MoveRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "8/8/8/8/8/8/8/K6k w - - 0 1", req.FEN)
		assert.Equal(t, "gpt-4o", req.Model)

		_, _ = w.Write([]byte(`{"move":"a1a2","san":"Ka2"}`))
	})
	c.APIKey = "sk-client-0000"

	resp, err := c.Move("8/8/8/8/8/8/8/K6k w - - 0 1", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "a1a2", resp.Move)
	require.NotNil(t, resp.SAN)
	assert.Equal(t, "Ka2", *resp.SAN)
}

func TestErrorResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`{"detail":"key missing","code":"CREDENTIAL_MISSING"}`))
	})

	_, err := c.Move("fen", "")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusPreconditionFailed, se.StatusCode)
	assert.Equal(t, "CREDENTIAL_MISSING", se.Body.Code)
	assert.Contains(t, err.Error(), "key missing")
}

func TestNonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	_, err := c.Health()
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "bad gateway", se.Body.Detail)
}

func TestKeyManagement(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()
		assert.Equal(t, "Bearer admin-jwt", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"status":"success","message":"ok"}`))
	})
	c.AdminToken = "admin-jwt"

	_, err := c.SetAPIKey("sk-new-000000")
	require.NoError(t, err)
	_, err = c.ClearAPIKey()
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"POST /config/api-key", "DELETE /config/api-key"}, calls)
}

func TestModels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`["gpt-4o","gpt-4o-mini"]`))
	})
	models, err := c.Models()
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, models)
}
