package processor

import (
	"llmchess/internal/server/core"
	"llmchess/internal/server/credential"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdSelectMove CommandType = iota
	CmdSetCredential
	CmdClearCredential
	CmdListModels
	CmdHealth
)

func (t CommandType) String() string {
	switch t {
	case CmdSelectMove:
		return "select_move"
	case CmdSetCredential:
		return "set_credential"
	case CmdClearCredential:
		return "clear_credential"
	case CmdListModels:
		return "list_models"
	case CmdHealth:
		return "health"
	default:
		return "unknown"
	}
}

// Command is a unified structure for all processor operations
type Command struct {
	Type CommandType
	// Credential is the per-request key, or the candidate for CmdSetCredential
	Credential credential.Credential
	Args       any
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Status  int                 `json:"-"`
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewSelectMoveCommand(req core.MoveRequest, cred credential.Credential) Command {
	return Command{
		Type:       CmdSelectMove,
		Credential: cred,
		Args:       req,
	}
}

func NewSetCredentialCommand(candidate credential.Credential) Command {
	return Command{
		Type:       CmdSetCredential,
		Credential: candidate,
	}
}

func NewClearCredentialCommand() Command {
	return Command{Type: CmdClearCredential}
}

func NewListModelsCommand(cred credential.Credential) Command {
	return Command{
		Type:       CmdListModels,
		Credential: cred,
	}
}

func NewHealthCommand(cred credential.Credential) Command {
	return Command{
		Type:       CmdHealth,
		Credential: cred,
	}
}
