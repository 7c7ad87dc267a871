package display

import (
	"bytes"
	"encoding/json"
)

// Indent pretty-prints a JSON document, returning s unchanged when it is not JSON
func Indent(s string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
