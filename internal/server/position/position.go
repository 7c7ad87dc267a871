// Package position owns the policy around chess positions: what counts as malformed
// input, when a game is already over, and which moves a provider may choose from.
// Rules computation is delegated to github.com/notnil/chess.
package position

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"llmchess/internal/server/core"

	"github.com/notnil/chess"
)

const (
	StartingFEN  = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	maxFENLength = 100
)

// FEN shape pre-check, the rules library does the real parse
var fenPattern = regexp.MustCompile(`^[rnbqkpRNBQKP1-8/]+ [wb] [KQkq-]+ [a-h1-8-]+( \d+( \d+)?)?$`)

// Position is an immutable, rules-valid board state
type Position struct {
	fen  string
	game *chess.Game
}

// Parse validates FEN text and returns a Position or an InvalidPosition error
func Parse(fen string) (p *Position, err error) {
	fen = strings.TrimSpace(fen)
	if !isFENSafe(fen) {
		return nil, core.NewError(core.ErrInvalidPosition, fmt.Errorf("fen rejected by pre-check: %q", truncate(fen)))
	}

	normalized, ok := normalizeFEN(fen)
	if !ok {
		return nil, core.NewError(core.ErrInvalidPosition, fmt.Errorf("fen placement or field count rejected: %q", truncate(fen)))
	}
	fen = normalized

	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, core.NewError(core.ErrInvalidPosition, err)
	}

	// Library move generation assumes a well-formed board
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = core.NewError(core.ErrInvalidPosition, fmt.Errorf("rules library rejected position: %v", r))
		}
	}()

	game := chess.NewGame(opt)
	if err = checkKings(game.Position()); err != nil {
		return nil, core.NewError(core.ErrInvalidPosition, err)
	}

	return &Position{fen: fen, game: game}, nil
}

// FEN returns the normalized text the position was parsed from
func (p *Position) FEN() string {
	return p.fen
}

// Turn returns "w" or "b"
func (p *Position) Turn() string {
	if p.game.Position().Turn() == chess.White {
		return "w"
	}
	return "b"
}

// CheckNotOver fails with GameAlreadyOver for checkmate, stalemate and automatic draws
func (p *Position) CheckNotOver() error {
	if outcome := p.game.Outcome(); outcome != chess.NoOutcome {
		return core.NewError(core.ErrGameAlreadyOver,
			fmt.Errorf("outcome %v by %v", outcome, p.game.Method()))
	}
	return nil
}

// LegalMoves enumerates the moves playable in this exact position
func (p *Position) LegalMoves() (*LegalMoveSet, error) {
	valid := p.game.ValidMoves()
	set := &LegalMoveSet{
		pos:   p.game.Position(),
		ids:   make([]string, 0, len(valid)),
		moves: make(map[string]*chess.Move, len(valid)),
	}

	uci := chess.UCINotation{}
	for _, m := range valid {
		id := uci.Encode(set.pos, m)
		if _, dup := set.moves[id]; dup {
			continue
		}
		set.ids = append(set.ids, id)
		set.moves[id] = m
	}

	if len(set.ids) == 0 {
		return nil, core.NewError(core.ErrNoLegalMoves, fmt.Errorf("no legal moves in %q", p.fen))
	}
	return set, nil
}

// ParseSAN resolves display notation back to a legal move of this position
func (p *Position) ParseSAN(san string) (LegalMove, error) {
	set, err := p.LegalMoves()
	if err != nil {
		return LegalMove{}, err
	}
	m, err := chess.AlgebraicNotation{}.Decode(set.pos, san)
	if err != nil {
		return LegalMove{}, fmt.Errorf("decode san %q: %w", san, err)
	}
	return set.Lookup(chess.UCINotation{}.Encode(set.pos, m))
}

// ASCII renders the board with rank and file labels, white at the bottom
func (p *Position) ASCII() string {
	squares := p.game.Position().Board().SquareMap()

	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")
	for r := 7; r >= 0; r-- {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for f := 0; f < 8; f++ {
			piece, ok := squares[chess.Square(r*8+f)]
			if !ok || piece == chess.NoPiece {
				sb.WriteString(". ")
				continue
			}
			sb.WriteString(pieceLetter(piece) + " ")
		}
		sb.WriteString(fmt.Sprintf(" %d\n", r+1))
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}

// isFENSafe rejects control characters and text that cannot be FEN
func isFENSafe(fen string) bool {
	if fen == "" || len(fen) > maxFENLength {
		return false
	}
	for _, r := range fen {
		if unicode.IsControl(r) {
			return false
		}
	}
	return fenPattern.MatchString(fen)
}

func checkKings(pos *chess.Position) error {
	var white, black int
	for _, piece := range pos.Board().SquareMap() {
		switch piece {
		case chess.WhiteKing:
			white++
		case chess.BlackKing:
			black++
		}
	}
	if white != 1 || black != 1 {
		return fmt.Errorf("expected one king per side, got white=%d black=%d", white, black)
	}
	return nil
}

func pieceLetter(p chess.Piece) string {
	letter := p.Type().String()
	if p.Color() == chess.White {
		return strings.ToUpper(letter)
	}
	return strings.ToLower(letter)
}

func truncate(s string) string {
	const limit = 32
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
