package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"llmchess/internal/client/api"
	"llmchess/internal/client/display"
	"llmchess/internal/client/session"
)

// ErrExit is returned by the exit command; the REPL stops on it
var ErrExit = errors.New("exit")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(*session.Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *session.Session
	commands map[string]*Command
	out      io.Writer
	// readSecret reads a line without echo
	readSecret func(prompt string) (string, error)
}

func NewRegistry(s *session.Session) *Registry {
	r := &Registry{
		session:    s,
		commands:   make(map[string]*Command),
		out:        os.Stdout,
		readSecret: readPassword,
	}

	r.registerChessCommands()
	r.registerKeyCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})
	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler: func(*session.Session, []string) error {
			return ErrExit
		},
	})

	return r
}

// SetOutput redirects command output, the session client included
func (r *Registry) SetOutput(w io.Writer) {
	r.out = w
	r.session.Client.Out = w
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

func (r *Registry) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Execute runs one input line. It returns ErrExit when the user asked to leave.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		r.printf("%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		r.printf("Type 'help' for available commands\n")
		return nil
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	err := cmd.Handler(r.session, parts[1:])
	if errors.Is(err, ErrExit) {
		r.printf("%sGoodbye!%s\n", display.Cyan, display.Reset)
		return ErrExit
	}
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			r.printf("%sError: %s%s\n", display.Red, se.Body.Detail, display.Reset)
			if se.Body.Code != "" {
				r.printf("%sCode: %s%s\n", display.Red, se.Body.Code, display.Reset)
			}
			return nil
		}
		r.printf("%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func (r *Registry) helpHandler(_ *session.Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		r.printf("\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			r.printf("Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		r.printf("Usage: %s\n", cmd.Usage)
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, cmd := range r.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)

	r.printf("\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)
	for _, name := range names {
		cmd := r.commands[name]
		shortPart := "    "
		if cmd.ShortName != "" {
			shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
		}
		r.printf("  %s%-8s %s\n", shortPart, cmd.Name, cmd.Description)
	}
	r.printf("\nType 'help <command>' for detailed usage\n")
	r.printf("Add '-v' to any command for verbose output\n")
	return nil
}
