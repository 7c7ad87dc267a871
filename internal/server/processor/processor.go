package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"llmchess/internal/server/catalog"
	"llmchess/internal/server/core"
	"llmchess/internal/server/credential"
	"llmchess/internal/server/position"
	"llmchess/internal/server/selector"
	"llmchess/internal/server/translate"
)

const defaultProbeTimeout = 15 * time.Second

// Deps are the collaborators a Processor coordinates
type Deps struct {
	Store        *credential.Store
	Selector     *selector.Selector
	Catalog      *catalog.Catalog
	Translator   *translate.Translator
	ProviderName string
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

// Processor handles command execution and coordinates position rules, the
// credential store and the provider-facing components
type Processor struct {
	store        *credential.Store
	selector     *selector.Selector
	catalog      *catalog.Catalog
	translator   *translate.Translator
	providerName string
	probeTimeout time.Duration
	log          *slog.Logger
}

func New(d Deps) *Processor {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Translator == nil {
		d.Translator = translate.New(d.Logger)
	}
	if d.ProbeTimeout <= 0 {
		d.ProbeTimeout = defaultProbeTimeout
	}
	return &Processor{
		store:        d.Store,
		selector:     d.Selector,
		catalog:      d.Catalog,
		translator:   d.Translator,
		providerName: d.ProviderName,
		probeTimeout: d.ProbeTimeout,
		log:          d.Logger,
	}
}

func (p *Processor) Execute(ctx context.Context, cmd Command) (resp ProcessorResponse) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic in command", "command", cmd.Type, "panic", r)
			resp = p.domainErrorResponse(core.NewError(core.ErrUnknown, fmt.Errorf("panic: %v", r)))
		}
	}()

	switch cmd.Type {
	case CmdSelectMove:
		return p.handleSelectMove(ctx, cmd)
	case CmdSetCredential:
		return p.handleSetCredential(ctx, cmd)
	case CmdClearCredential:
		return p.handleClearCredential()
	case CmdListModels:
		return p.handleListModels(ctx, cmd)
	case CmdHealth:
		return p.handleHealth(cmd)
	default:
		return p.errorResponse(http.StatusBadRequest, "unknown command", core.ErrInvalidRequest)
	}
}

// SelectMove runs the move pipeline. Each step short-circuits, and nothing
// reaches the provider until the position is known playable and a credential
// is available.
func (p *Processor) SelectMove(ctx context.Context, fen, model string, requestCred credential.Credential) (core.MoveResponse, *core.DomainError) {
	pos, err := position.Parse(fen)
	if err != nil {
		return core.MoveResponse{}, asDomain(err)
	}
	if err := pos.CheckNotOver(); err != nil {
		return core.MoveResponse{}, asDomain(err)
	}
	set, err := pos.LegalMoves()
	if err != nil {
		return core.MoveResponse{}, asDomain(err)
	}

	cred, ok := credential.Resolve(requestCred, p.store)
	if !ok {
		return core.MoveResponse{}, p.translator.Translate(
			core.NewError(core.ErrCredentialMissing, fmt.Errorf("no request or default credential")))
	}

	choice, err := p.selector.SelectMove(ctx, pos, set, model, cred)
	if err != nil {
		return core.MoveResponse{}, p.translator.Translate(err)
	}

	san := choice.Move.SAN()
	p.log.Info("move selected",
		"fen", pos.FEN(),
		"move", choice.Move.ID(),
		"san", san,
		"legal_moves", set.Len())

	return core.MoveResponse{
		Move:      choice.Move.ID(),
		SAN:       &san,
		Reasoning: choice.Reasoning,
	}, nil
}

func (p *Processor) handleSelectMove(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse(http.StatusBadRequest, "invalid arguments", core.ErrInvalidRequest)
	}

	resp, derr := p.SelectMove(ctx, args.FEN, args.Model, cmd.Credential)
	if derr != nil {
		return p.domainErrorResponse(derr)
	}
	return ProcessorResponse{Success: true, Status: http.StatusOK, Data: resp}
}

// handleSetCredential probes the candidate and commits it on success
func (p *Processor) handleSetCredential(ctx context.Context, cmd Command) ProcessorResponse {
	if cmd.Credential.IsZero() {
		return p.errorResponse(http.StatusBadRequest, "Missing API key", core.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	if err := p.store.ValidateAndCommit(ctx, cmd.Credential); err != nil {
		return p.domainErrorResponse(asDomain(err))
	}
	return ProcessorResponse{
		Success: true,
		Status:  http.StatusOK,
		Data:    core.StatusResponse{Status: "success", Message: "API key validated and updated"},
	}
}

func (p *Processor) handleClearCredential() ProcessorResponse {
	p.store.Clear()
	p.log.Info("credential cleared")
	return ProcessorResponse{
		Success: true,
		Status:  http.StatusOK,
		Data:    core.StatusResponse{Status: "success", Message: "API key cleared"},
	}
}

func (p *Processor) handleListModels(ctx context.Context, cmd Command) ProcessorResponse {
	cred, _ := credential.Resolve(cmd.Credential, p.store)
	return ProcessorResponse{
		Success: true,
		Status:  http.StatusOK,
		Data:    p.catalog.ListModels(ctx, cred),
	}
}

func (p *Processor) handleHealth(cmd Command) ProcessorResponse {
	_, configured := credential.Resolve(cmd.Credential, p.store)
	return ProcessorResponse{
		Success: true,
		Status:  http.StatusOK,
		Data: core.HealthResponse{
			Status:           "ok",
			APIKeyConfigured: configured,
			Provider:         p.providerName,
		},
	}
}

// asDomain keeps DomainErrors and classifies anything else as Unknown
func asDomain(err error) *core.DomainError {
	var de *core.DomainError
	if errors.As(err, &de) {
		return de
	}
	return core.NewError(core.ErrUnknown, err)
}

func (p *Processor) domainErrorResponse(de *core.DomainError) ProcessorResponse {
	body := de.Response()
	return ProcessorResponse{
		Success: false,
		Status:  de.Status(),
		Error:   &body,
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(status int, message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Status:  status,
		Error: &core.ErrorResponse{
			Detail: message,
			Code:   code,
		},
	}
}
