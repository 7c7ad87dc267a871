package provider

// Contract is the closed-choice output shape sent to the model.
// Moves becomes the enum of the move field, so a conforming model cannot name anything else.
type Contract struct {
	Name        string
	Description string
	Moves       []string
}

const (
	FieldMove      = "move"
	FieldReasoning = "reasoning"
)

// Properties returns the JSON-schema properties object
func (c Contract) Properties() map[string]any {
	moves := make([]string, len(c.Moves))
	copy(moves, c.Moves)
	return map[string]any{
		FieldMove: map[string]any{
			"type":        "string",
			"enum":        moves,
			"description": "The chosen move in UCI notation, one of the legal moves",
		},
		FieldReasoning: map[string]any{
			"type":        "string",
			"description": "Short justification of the choice",
		},
	}
}

func (c Contract) Required() []string {
	return []string{FieldMove, FieldReasoning}
}

// Schema returns the complete object schema, closed to extra properties
func (c Contract) Schema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           c.Properties(),
		"required":             c.Required(),
		"additionalProperties": false,
	}
}
