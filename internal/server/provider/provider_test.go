package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractSchemaIsClosed(t *testing.T) {
	c := Contract{Name: "select_move", Moves: []string{"e2e4", "d2d4"}}
	schema := c.Schema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.ElementsMatch(t, []string{"move", "reasoning"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	move, ok := props["move"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"e2e4", "d2d4"}, move["enum"])

	// the schema holds its own copy of the moves
	c.Moves[0] = "a1a8"
	assert.Equal(t, []string{"e2e4", "d2d4"}, move["enum"])
}

func TestErrorKind(t *testing.T) {
	err := fmt.Errorf("calling: %w", NewError(KindRateLimit, "openai", errors.New("quota")))
	assert.Equal(t, KindRateLimit, KindOf(err))
	assert.Equal(t, KindOther, KindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "openai: rate_limit: quota")

	withStatus := &Error{Kind: KindAuth, Provider: "anthropic", Status: 401, Err: errors.New("bad key")}
	assert.Contains(t, withStatus.Error(), "status 401")
}

func TestKindForStatus(t *testing.T) {
	assert.Equal(t, KindRateLimit, KindForStatus(429))
	assert.Equal(t, KindAuth, KindForStatus(401))
	assert.Equal(t, KindAuth, KindForStatus(403))
	assert.Equal(t, KindConnection, KindForStatus(504))
	assert.Equal(t, KindOther, KindForStatus(500))
	assert.Equal(t, KindOther, KindForStatus(400))
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, IsConnectionError(nil))
	assert.False(t, IsConnectionError(errors.New("boom")))
	assert.True(t, IsConnectionError(context.DeadlineExceeded))
	assert.True(t, IsConnectionError(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.True(t, IsConnectionError(&url.Error{Op: "Post", URL: "https://example.invalid", Err: errors.New("dial")}))
	assert.True(t, IsConnectionError(&net.OpError{Op: "dial", Err: errors.New("refused")}))
}

func TestResultVariants(t *testing.T) {
	assert.True(t, Result{}.IsEmpty())
	s := Structured("e2e4", "center")
	assert.Equal(t, "e2e4", s.Structured.Move.Value)
	assert.Nil(t, s.Mapping)
	m := Mapping(map[string]any{"move": "e2e4"})
	assert.Nil(t, m.Structured)
	assert.False(t, m.IsEmpty())
}
