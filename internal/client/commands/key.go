package commands

import (
	"fmt"
	"os"
	"strings"

	"llmchess/internal/client/display"
	"llmchess/internal/client/session"

	"golang.org/x/term"
)

func (r *Registry) registerKeyCommands() {
	r.Register(&Command{
		Name:        "key",
		ShortName:   "k",
		Description: "Validate and store a provider API key on the server",
		Usage:       "key  (prompts without echo)",
		Handler:     r.keyHandler,
	})
	r.Register(&Command{
		Name:        "forget",
		ShortName:   "f",
		Description: "Clear the server's stored API key",
		Usage:       "forget",
		Handler:     r.forgetHandler,
	})
	r.Register(&Command{
		Name:        "header",
		ShortName:   "e",
		Description: "Send a key with each request instead of storing it",
		Usage:       "header [-]  (prompts without echo, '-' stops sending)",
		Handler:     r.headerHandler,
	})
	r.Register(&Command{
		Name:        "token",
		ShortName:   "t",
		Description: "Set the admin token for key management",
		Usage:       "token [<jwt> | -]",
		Handler:     r.tokenHandler,
	})
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (r *Registry) keyHandler(s *session.Session, _ []string) error {
	key, err := r.readSecret(display.Yellow + "API key: " + display.Reset)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("no key entered")
	}
	resp, err := s.Client.SetAPIKey(key)
	if err != nil {
		return err
	}
	r.printf("%s%s%s\n", display.Green, resp.Message, display.Reset)
	return nil
}

func (r *Registry) forgetHandler(s *session.Session, _ []string) error {
	resp, err := s.Client.ClearAPIKey()
	if err != nil {
		return err
	}
	r.printf("%s%s%s\n", display.Green, resp.Message, display.Reset)
	return nil
}

func (r *Registry) headerHandler(s *session.Session, args []string) error {
	if len(args) > 0 && args[0] == "-" {
		s.Client.APIKey = ""
		r.printf("%sPer-request key cleared%s\n", display.Cyan, display.Reset)
		return nil
	}
	key, err := r.readSecret(display.Yellow + "API key: " + display.Reset)
	if err != nil {
		return err
	}
	s.Client.APIKey = key
	r.printf("%sPer-request key set%s\n", display.Cyan, display.Reset)
	return nil
}

func (r *Registry) tokenHandler(s *session.Session, args []string) error {
	switch {
	case len(args) == 0:
		if s.Client.AdminToken == "" {
			r.printf("No admin token set\n")
		} else {
			r.printf("Admin token set\n")
		}
	case args[0] == "-":
		s.Client.AdminToken = ""
		r.printf("%sAdmin token cleared%s\n", display.Cyan, display.Reset)
	default:
		s.Client.AdminToken = args[0]
		r.printf("%sAdmin token set%s\n", display.Cyan, display.Reset)
	}
	return nil
}
