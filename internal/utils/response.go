package utils

import (
	stderrors "errors"

	"campuspay/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse maps a domain error onto the HTTP status it
// warrants. Unknown errors become an opaque 500 so internal state never
// leaks to callers.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var fundsErr *errors.InsufficientFundsError
	if stderrors.As(err, &fundsErr) {
		return Respond(c, fiber.StatusPaymentRequired, fiber.Map{
			"error":    "insufficient funds",
			"balance":  fundsErr.Balance,
			"required": fundsErr.Required,
		})
	}

	var domainErr *errors.DomainError
	if !stderrors.As(err, &domainErr) {
		return InternalError(c, "server error")
	}

	switch domainErr {
	case errors.ErrAccountNotFound, errors.ErrShopNotFound,
		errors.ErrCategoryNotFound, errors.ErrProductNotFound:
		return NotFound(c, domainErr.Message)
	case errors.ErrPermissionDenied, errors.ErrUnknownRole:
		return Forbidden(c, domainErr.Message)
	case errors.ErrPaymentNotConfirmed:
		return Respond(c, fiber.StatusUnprocessableEntity, fiber.Map{"error": domainErr.Message})
	case errors.ErrInvalidCredentials, errors.ErrInvalidToken:
		return Unauthorized(c, domainErr.Message)
	case errors.ErrTransactionFailed:
		return InternalError(c, domainErr.Message)
	default:
		return BadRequest(c, domainErr.Message)
	}
}
