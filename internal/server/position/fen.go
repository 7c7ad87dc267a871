package position

import (
	"strings"
)

// board is a placement field expanded to 64 squares, a1 = 0, h8 = 63. Empty squares are 0.
type board [64]byte

func expandPlacement(placement string) (board, bool) {
	var b board
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return b, false
	}
	for i, rank := range ranks {
		r := 7 - i
		f := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				f += int(ch - '0')
			default:
				if f > 7 {
					return b, false
				}
				b[r*8+f] = byte(ch)
				f++
			}
		}
		if f != 8 {
			return b, false
		}
	}
	return b, true
}

func squareIndex(sq string) int {
	if len(sq) != 2 || sq[0] < 'a' || sq[0] > 'h' || sq[1] < '1' || sq[1] > '8' {
		return -1
	}
	return int(sq[1]-'1')*8 + int(sq[0]-'a')
}

// normalizeFEN fills missing move clocks and drops castling rights and en passant
// targets the placement cannot support, so move generation never offers them.
func normalizeFEN(fen string) (string, bool) {
	fields := strings.Fields(fen)
	switch len(fields) {
	case 4:
		fields = append(fields, "0", "1")
	case 5:
		fields = append(fields, "1")
	case 6:
	default:
		return "", false
	}

	b, ok := expandPlacement(fields[0])
	if !ok {
		return "", false
	}
	fields[2] = castlingRights(b, fields[2])
	fields[3] = enPassantTarget(b, fields[1], fields[3])
	return strings.Join(fields, " "), true
}

// castlingRights keeps a right only when king and rook stand on their home squares
func castlingRights(b board, rights string) string {
	home := map[rune][2]struct {
		sq    int
		piece byte
	}{
		'K': {{4, 'K'}, {7, 'R'}},
		'Q': {{4, 'K'}, {0, 'R'}},
		'k': {{60, 'k'}, {63, 'r'}},
		'q': {{60, 'k'}, {56, 'r'}},
	}

	var out strings.Builder
	for _, flag := range "KQkq" {
		if !strings.ContainsRune(rights, flag) {
			continue
		}
		req := home[flag]
		if b[req[0].sq] == req[0].piece && b[req[1].sq] == req[1].piece {
			out.WriteRune(flag)
		}
	}
	if out.Len() == 0 {
		return "-"
	}
	return out.String()
}

// enPassantTarget keeps the target only when it sits behind a pawn that just
// made a double push: target and origin squares empty, enemy pawn in front.
func enPassantTarget(b board, turn, target string) string {
	if target == "-" {
		return target
	}
	sq := squareIndex(target)
	if sq < 0 {
		return "-"
	}

	var targetRank, pawnStep int
	var pushed byte
	if turn == "w" {
		targetRank, pawnStep, pushed = 5, -8, 'p'
	} else {
		targetRank, pawnStep, pushed = 2, 8, 'P'
	}
	if sq/8 != targetRank {
		return "-"
	}
	origin := sq - pawnStep
	if b[sq] != 0 || b[origin] != 0 || b[sq+pawnStep] != pushed {
		return "-"
	}
	return target
}
