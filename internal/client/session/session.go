// Package session holds the debug client's mutable state between commands.
package session

import "llmchess/internal/client/api"

// StartFEN is the standard initial position
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type Session struct {
	APIBaseURL string
	Client     *api.Client
	Verbose    bool
	Model      string // empty uses the server default
	LastFEN    string
	LastMove   string
}

func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
	}
}
