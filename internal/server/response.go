package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Rana718/tablo/internal/table"
)

// Response is the envelope for every non-props API answer.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func JSON(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

func JSONMessage(c *fiber.Ctx, message string) error {
	return c.JSON(Response{Success: true, Message: message})
}

func JSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

// statusFor maps configuration errors to 400 and everything else to 500.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, table.ErrNotExportable), errors.Is(err, table.ErrInvalidEnum):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// errorHandler answers unhandled errors, unknown routes included, with the JSON
// envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	return JSONError(c, statusFor(err), err.Error())
}
