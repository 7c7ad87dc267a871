// Package catalog lists the conversational models a credential can use.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"llmchess/internal/server/credential"
	"llmchess/internal/server/provider"
)

const listTimeout = 10 * time.Second

type Catalog struct {
	provider provider.Provider
	log      *slog.Logger
}

func New(p provider.Provider, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{provider: p, log: log}
}

// ListModels never fails: no credential gives an empty list and a provider
// failure gives the static fallback
func (c *Catalog) ListModels(ctx context.Context, cred credential.Credential) []string {
	if cred.IsZero() {
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	policy := c.provider.ModelPolicy()
	ids, err := c.provider.ListModels(ctx, cred)
	if err != nil {
		c.log.Error("error fetching models, serving fallback list",
			"provider", c.provider.Name(), "err", err)
		return Fallback(policy)
	}

	models := Filter(ids, policy)
	c.log.Info("found chat models", "provider", c.provider.Name(), "count", len(models))
	return models
}

// Filter keeps allow-listed ids without excluded substrings, deduplicated and sorted
func Filter(ids []string, policy provider.ModelPolicy) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] || !allowed(id, policy) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func Fallback(policy provider.ModelPolicy) []string {
	out := make([]string, len(policy.Fallback))
	copy(out, policy.Fallback)
	return out
}

func allowed(id string, policy provider.ModelPolicy) bool {
	match := false
	for _, p := range policy.AllowPrefixes {
		if strings.HasPrefix(id, p) {
			match = true
			break
		}
	}
	if !match {
		return false
	}
	for _, s := range policy.ExcludeSubstrings {
		if strings.Contains(id, s) {
			return false
		}
	}
	return true
}
