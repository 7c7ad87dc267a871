package http

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"llmchess/internal/server/core"
	"llmchess/internal/server/credential"
	"llmchess/internal/server/processor"
	"llmchess/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	defaultRateLimit = 10 // req/min on /move
	defaultOrigin    = "http://localhost:4200"

	// HeaderAPIKey carries a per-request provider key
	HeaderAPIKey = "X-API-Key"
	// HeaderLegacyAPIKey is accepted for older frontends
	HeaderLegacyAPIKey = "X-OpenAI-Key"
)

// Options configures the Fiber app
type Options struct {
	Origins   []string
	RateLimit int // /move requests per minute per client
	Dev       bool
	Logger    *slog.Logger
}

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	log  *slog.Logger
}

func NewHTTPHandler(proc *processor.Processor, log *slog.Logger) *HTTPHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPHandler{proc: proc, log: log}
}

// NewFiberApp wires middleware and routes. A nil svc leaves credential
// management open, as in local development.
func NewFiberApp(proc *processor.Processor, svc *service.Service, opts Options) *fiber.App {
	h := NewHTTPHandler(proc, opts.Logger)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency} ${locals:requestid}\n",
	}))

	origins := defaultOrigin
	if len(opts.Origins) > 0 {
		origins = strings.Join(opts.Origins, ",")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + HeaderAPIKey + "," + HeaderLegacyAPIKey,
		ExposeHeaders: fiber.HeaderXRequestID,
	}))

	app.Use(contentTypeValidator)

	app.Get("/health", h.Health)

	maxReq := opts.RateLimit
	if maxReq <= 0 {
		maxReq = defaultRateLimit
	}
	if opts.Dev {
		maxReq *= 2
	}
	app.Post("/move", limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Detail: fmt.Sprintf("rate limit exceeded, %d move requests per minute allowed", maxReq),
				Code:   core.ErrRateLimitExceeded,
			})
		},
	}), validateBody[core.MoveRequest](false), h.SelectMove)

	cfg := app.Group("/config")
	cfg.Get("/models", h.ListModels)

	guard := func(c *fiber.Ctx) error { return c.Next() }
	if svc != nil {
		guard = AuthRequired(svc.ValidateToken)
	}
	// the key may arrive in a header instead of the body
	cfg.Post("/api-key", guard, validateBody[core.APIKeyRequest](true), h.SetAPIKey)
	cfg.Delete("/api-key", guard, h.ClearAPIKey)

	return app
}

// contentTypeValidator ensures POST bodies are JSON
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Detail: "Content-Type must be application/json",
				Code:   core.ErrInvalidContent,
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Detail: core.DetailUnknown,
		Code:   string(core.ErrUnknown),
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Detail = e.Message

		switch code {
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			response.Code = core.ErrNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// Health reports liveness and whether a credential is usable
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewHealthCommand(requestCredential(c)))
	return h.respond(c, resp)
}

// SelectMove asks the provider for a legal move in the posted position
func (h *HTTPHandler) SelectMove(c *fiber.Ctx) error {
	req, ok := c.Locals("validatedBody").(*core.MoveRequest)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Detail: "invalid request body",
			Code:   core.ErrInvalidRequest,
		})
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewSelectMoveCommand(*req, requestCredential(c)))
	return h.respond(c, resp)
}

func (h *HTTPHandler) ListModels(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewListModelsCommand(requestCredential(c)))
	return h.respond(c, resp)
}

// SetAPIKey validates and stores the process-wide key. The body wins over headers.
func (h *HTTPHandler) SetAPIKey(c *fiber.Ctx) error {
	candidate := requestCredential(c)
	if req, ok := c.Locals("validatedBody").(*core.APIKeyRequest); ok && req.APIKey != "" {
		candidate = credential.New(req.APIKey)
	}
	if userID, ok := c.Locals("userID").(string); ok {
		h.log.Info("credential update requested", "admin", userID)
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewSetCredentialCommand(candidate))
	return h.respond(c, resp)
}

func (h *HTTPHandler) ClearAPIKey(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewClearCredentialCommand())
	return h.respond(c, resp)
}

func (h *HTTPHandler) respond(c *fiber.Ctx, resp processor.ProcessorResponse) error {
	if !resp.Success {
		return c.Status(resp.Status).JSON(resp.Error)
	}
	return c.Status(resp.Status).JSON(resp.Data)
}

// requestCredential reads the per-request key, preferring the current header name.
// Header keys skip Store.ValidateAndCommit; a bad one surfaces as CREDENTIAL_INVALID from the provider.
func requestCredential(c *fiber.Ctx) credential.Credential {
	if key := c.Get(HeaderAPIKey); key != "" {
		return credential.New(key)
	}
	return credential.New(c.Get(HeaderLegacyAPIKey))
}
