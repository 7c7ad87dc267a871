package display

import (
	"fmt"
	"io"
	"strings"
)

// RenderFEN draws the piece placement of a FEN with colored pieces, white at the bottom
func RenderFEN(w io.Writer, fen string) error {
	placement, _, _ := strings.Cut(strings.TrimSpace(fen), " ")
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}

	files := Cyan + "  a b c d e f g h" + Reset
	fmt.Fprintln(w, files)
	for i, rank := range ranks {
		label := fmt.Sprintf("%s%d%s", Cyan, 8-i, Reset)
		var row strings.Builder
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				row.WriteString(strings.Repeat(" .", int(ch-'0')))
			case ch >= 'A' && ch <= 'Z':
				fmt.Fprintf(&row, " %s%c%s", Blue, ch, Reset)
			case ch >= 'a' && ch <= 'z':
				fmt.Fprintf(&row, " %s%c%s", Red, ch, Reset)
			default:
				return fmt.Errorf("unexpected %q in rank %d", ch, 8-i)
			}
		}
		fmt.Fprintf(w, "%s%s %s\n", label, row.String(), label)
	}
	fmt.Fprintln(w, files)
	return nil
}

// ColorForTurn returns colored side-to-move from a FEN active color field
func ColorForTurn(turn string) string {
	if turn == "w" {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
