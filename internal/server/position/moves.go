package position

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// ErrNotInSet is returned when a move identifier is not legal in the position
var ErrNotInSet = errors.New("move not in legal move set")

// LegalMoveSet is the ordered, deduplicated set of UCI identifiers for one position
type LegalMoveSet struct {
	pos   *chess.Position
	ids   []string
	moves map[string]*chess.Move
}

// IDs returns a copy of the identifiers in generation order
func (s *LegalMoveSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *LegalMoveSet) Len() int {
	return len(s.ids)
}

func (s *LegalMoveSet) Contains(id string) bool {
	_, ok := s.moves[normalizeID(id)]
	return ok
}

// Lookup is the only way to obtain a LegalMove
func (s *LegalMoveSet) Lookup(id string) (LegalMove, error) {
	id = normalizeID(id)
	m, ok := s.moves[id]
	if !ok {
		return LegalMove{}, fmt.Errorf("%w: %q", ErrNotInSet, truncate(id))
	}
	return LegalMove{id: id, move: m, pos: s.pos}, nil
}

// LegalMove is a move identifier proven to be a member of its LegalMoveSet
type LegalMove struct {
	id   string
	move *chess.Move
	pos  *chess.Position
}

// ID returns the UCI identifier, e.g. "e2e4"
func (m LegalMove) ID() string {
	return m.id
}

// SAN returns display notation relative to the position the move was drawn from
func (m LegalMove) SAN() string {
	return chess.AlgebraicNotation{}.Encode(m.pos, m.move)
}

func (m LegalMove) IsZero() bool {
	return m.move == nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
