package commands

import (
	"fmt"
	"strings"

	"llmchess/internal/client/display"
	"llmchess/internal/client/session"

	"github.com/notnil/chess"
)

func (r *Registry) registerChessCommands() {
	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Ask the server for a move",
		Usage:       "move [<fen> | start]  (no argument continues from the last position)",
		Handler:     r.moveHandler,
	})
	r.Register(&Command{
		Name:        "model",
		ShortName:   "o",
		Description: "Set or clear the model sent with moves",
		Usage:       "model [<id> | -]",
		Handler:     r.modelHandler,
	})
	r.Register(&Command{
		Name:        "models",
		ShortName:   "l",
		Description: "List models the server offers",
		Usage:       "models",
		Handler:     r.modelsHandler,
	})
}

func (r *Registry) moveHandler(s *session.Session, args []string) error {
	fen := strings.Join(args, " ")
	switch {
	case fen == "start":
		fen = session.StartFEN
	case fen == "" && s.LastFEN != "":
		fen = s.LastFEN
	case fen == "":
		return fmt.Errorf("usage: move [<fen> | start]")
	}

	resp, err := s.Client.Move(fen, s.Model)
	if err != nil {
		return err
	}

	san := resp.Move
	if resp.SAN != nil {
		san = *resp.SAN
	}
	r.printf("%sMove:%s %s (%s)\n", display.Cyan, display.Reset, resp.Move, san)
	if resp.Reasoning != "" {
		r.printf("%sReasoning:%s %s\n", display.Cyan, display.Reset, resp.Reasoning)
	}

	next, err := applyMove(fen, resp.Move)
	if err != nil {
		return fmt.Errorf("apply %s: %w", resp.Move, err)
	}
	s.LastFEN = next
	s.LastMove = resp.Move

	r.printf("\n")
	if err := display.RenderFEN(r.out, next); err != nil {
		return err
	}
	fields := strings.Fields(next)
	if len(fields) > 1 {
		r.printf("%s to move: %s\n", display.ColorForTurn(fields[1]), next)
	}
	return nil
}

// applyMove plays a UCI move on fen and returns the resulting FEN
func applyMove(fen, uci string) (string, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return "", err
	}
	game := chess.NewGame(opt)
	mv, err := chess.UCINotation{}.Decode(game.Position(), uci)
	if err != nil {
		return "", err
	}
	if err := game.Move(mv); err != nil {
		return "", err
	}
	return game.FEN(), nil
}

func (r *Registry) modelHandler(s *session.Session, args []string) error {
	if len(args) == 0 {
		model := s.Model
		if model == "" {
			model = "(server default)"
		}
		r.printf("Model: %s\n", model)
		return nil
	}
	if args[0] == "-" {
		s.Model = ""
		r.printf("%sModel cleared, using server default%s\n", display.Cyan, display.Reset)
		return nil
	}
	s.Model = args[0]
	r.printf("%sModel set to: %s%s\n", display.Cyan, s.Model, display.Reset)
	return nil
}

func (r *Registry) modelsHandler(s *session.Session, _ []string) error {
	models, err := s.Client.Models()
	if err != nil {
		return err
	}
	if len(models) == 0 {
		r.printf("%sNo models (is an API key configured?)%s\n", display.Yellow, display.Reset)
		return nil
	}
	for _, m := range models {
		marker := " "
		if m == s.Model {
			marker = "*"
		}
		r.printf(" %s %s\n", marker, m)
	}
	return nil
}
