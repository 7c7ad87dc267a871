package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"llmchess/internal/server/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// validateBody parses and validates the JSON body into a fresh T.
// Routes attach it after their auth guard so unauthenticated bodies are never decoded.
func validateBody[T any](optionalBody bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestType := new(T)

		if len(c.Body()) == 0 && optionalBody {
			c.Locals("validatedBody", requestType)
			return c.Next()
		}

		if err := c.BodyParser(requestType); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Detail: "invalid request body: " + err.Error(),
				Code:   core.ErrInvalidRequest,
			})
		}

		if err := validate.Struct(requestType); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
					Detail: "validation failed: " + err.Error(),
					Code:   core.ErrInvalidRequest,
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Detail: "validation failed: " + describe(verrs),
				Code:   core.ErrInvalidRequest,
			})
		}

		// Store validated body for handler use
		c.Locals("validatedBody", requestType)
		return c.Next()
	}
}

func describe(errs validator.ValidationErrors) string {
	var details strings.Builder
	for _, err := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", err.Field()))
		case "min":
			if err.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", err.Field(), err.Param()))
			}
		case "max":
			if err.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", err.Field(), err.Param()))
			}
		case "printascii":
			details.WriteString(fmt.Sprintf("%s must be printable ASCII", err.Field()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
		}
	}
	return details.String()
}
