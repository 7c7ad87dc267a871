package display

import "strings"

// ANSI codes used by the client
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// Paint wraps text in color, leaving empty text uncolored
func Paint(color, text string) string {
	if text == "" {
		return ""
	}
	return color + text + Reset
}

// Prompt returns the readline prompt for label
func Prompt(label string) string {
	return Yellow + label + " > " + Reset
}

// SessionPrompt renders "llmchess [model key] last:e2e4 > " from the client state.
// The bracket is omitted when neither a model override nor a per-request key is set.
func SessionPrompt(model string, hasKey bool, lastMove string) string {
	var parts []string
	if model != "" {
		parts = append(parts, Paint(Magenta, model))
	}
	if hasKey {
		parts = append(parts, Paint(Green, "key"))
	}

	var b strings.Builder
	b.WriteString(Yellow + "llmchess")
	if len(parts) > 0 {
		b.WriteString(" [" + Reset + strings.Join(parts, " ") + Yellow + "]")
	}
	if lastMove != "" {
		b.WriteString(" last:" + Paint(White, lastMove) + Yellow)
	}
	b.WriteString(" > " + Reset)
	return b.String()
}
