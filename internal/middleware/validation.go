package middleware

import (
	"github.com/gofiber/fiber/v2"

	"quizforge/internal/validation"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateGenerationID validates the :id path parameter of generation lookups
func (vm *ValidationMiddleware) ValidateGenerationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errors := vm.validator.ValidateGenerationID(id); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals("validated_generation_id", id)
		return c.Next()
	}
}
