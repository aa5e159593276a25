package handlers

import (
	"context"
	"errors"

	"focargo/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors to HTTP status codes. Unrecognised errors get fallback.
func statusFor(err error, fallback int) int {
	var httpErr *services.GatewayHTTPError
	switch {
	case errors.Is(err, services.ErrInvalidImage),
		errors.Is(err, services.ErrEmptyQuery),
		errors.Is(err, services.ErrUnknownOption):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrBusy),
		errors.Is(err, services.ErrStaleResponse),
		errors.Is(err, services.ErrSessionClosed):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, services.ErrEmptyResponse),
		errors.Is(err, services.ErrMalformedResponse),
		errors.As(err, &httpErr):
		return fiber.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}
	return fallback
}

// fail writes the {"error", "cause"} body. message is what the user sees; the
// service error goes to cause.
func fail(c *fiber.Ctx, err error, fallback int, message string) error {
	status := statusFor(err, fallback)
	if status < fiber.StatusInternalServerError || message == "" {
		message = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"cause": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"cause": err.Error(),
	})
}
