package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"llmchess/internal/server/core"
	"llmchess/internal/server/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateTable(t *testing.T) {
	cause := errors.New("upstream said no")
	cases := []struct {
		name   string
		err    error
		kind   core.Kind
		status int
	}{
		{"missing credential", core.NewError(core.ErrCredentialMissing, nil), core.ErrCredentialMissing, http.StatusPreconditionFailed},
		{"rate limit", provider.NewError(provider.KindRateLimit, "openai", cause), core.ErrProviderRateLimited, http.StatusTooManyRequests},
		{"auth", provider.NewError(provider.KindAuth, "openai", cause), core.ErrCredentialInvalid, http.StatusUnauthorized},
		{"connection", provider.NewError(provider.KindConnection, "anthropic", cause), core.ErrProviderUnreachable, http.StatusServiceUnavailable},
		{"malformed", provider.NewError(provider.KindMalformed, "anthropic", cause), core.ErrResponseUnparseable, http.StatusInternalServerError},
		{"other provider failure", provider.NewError(provider.KindOther, "openai", cause), core.ErrUnknown, http.StatusInternalServerError},
		{"raw deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), core.ErrProviderUnreachable, http.StatusServiceUnavailable},
		{"raw unknown", cause, core.ErrUnknown, http.StatusInternalServerError},
	}

	tr := New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := tr.Translate(tc.err)
			require.NotNil(t, de)
			assert.Equal(t, tc.kind, de.Kind)
			assert.Equal(t, tc.status, de.Status())
		})
	}
}

func TestTranslateNil(t *testing.T) {
	assert.Nil(t, New(nil).Translate(nil))
}

func TestTranslateKeepsCause(t *testing.T) {
	pe := provider.NewError(provider.KindAuth, "openai", errors.New("401"))
	de := New(nil).Translate(pe)

	var got *provider.Error
	require.ErrorAs(t, de, &got)
	assert.Same(t, pe, got)
	assert.NotContains(t, de.Response().Detail, "401")
}

func TestTranslateLogsEveryBranch(t *testing.T) {
	var buf bytes.Buffer
	tr := New(slog.New(slog.NewTextHandler(&buf, nil)))

	tr.Translate(provider.NewError(provider.KindRateLimit, "openai", errors.New("quota")))
	assert.Contains(t, buf.String(), "provider error translated")
	assert.Contains(t, buf.String(), "kind=PROVIDER_RATE_LIMITED")
	assert.Contains(t, buf.String(), "provider=openai")
	assert.Contains(t, buf.String(), "status=429")

	buf.Reset()
	tr.Translate(errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "kind=UNKNOWN")
}
