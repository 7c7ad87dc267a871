package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"llmchess/internal/client/display"
	"llmchess/internal/client/session"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Handler:     r.healthHandler,
	})
	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     r.urlHandler,
	})
	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Handler:     rawRequestHandler,
	})
	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func (r *Registry) healthHandler(s *session.Session, _ []string) error {
	resp, err := s.Client.Health()
	if err != nil {
		return err
	}
	r.printf("%sServer Health:%s\n", display.Cyan, display.Reset)
	r.printf("  Status:   %s\n", resp.Status)
	r.printf("  Provider: %s\n", resp.Provider)
	r.printf("  API key:  %v\n", resp.APIKeyConfigured)
	return nil
}

func (r *Registry) urlHandler(s *session.Session, args []string) error {
	if len(args) == 0 {
		r.printf("Current API URL: %s\n", s.APIBaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	s.APIBaseURL = url
	s.Client.SetBaseURL(url)

	r.printf("%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func rawRequestHandler(s *session.Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}
	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}
	return s.Client.RawRequest(strings.ToUpper(args[0]), args[1], body)
}

func clearHandler(*session.Session, []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
