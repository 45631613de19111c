package server

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/naturalorder/naturalorder/naturalorder/trade"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func sendError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorResponse{
		Error: errorBody{Code: code, Message: message},
	})
}

func sendData(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(successResponse{Success: true, Data: data})
}

// sendTradeError maps lifecycle errors onto HTTP statuses. Anything the
// mapping does not know is a server fault.
func sendTradeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return sendError(c, fiber.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, trade.ErrNotParticipant):
		return sendError(c, fiber.StatusForbidden, "NOT_PARTICIPANT", err.Error())
	case errors.Is(err, trade.ErrInvalidTransition),
		errors.Is(err, trade.ErrTerminalState),
		errors.Is(err, trade.ErrOwnRequest),
		errors.Is(err, trade.ErrNoPendingRequest),
		errors.Is(err, trade.ErrNotCustomCard),
		errors.Is(err, trade.ErrNotCardAdder):
		return sendError(c, fiber.StatusConflict, "INVALID_ACTION", err.Error())
	case errors.Is(err, trade.ErrConflict):
		return sendError(c, fiber.StatusConflict, "CONCURRENT_UPDATE",
			"The match changed while processing your request. Reload and try again.")
	}
	return sendError(c, fiber.StatusInternalServerError, "INTERNAL_SERVER_ERROR",
		"Something went wrong")
}

// errorHandler is the fiber fallback for errors no handler translated.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}
	return sendError(c, code, "ERROR", message)
}
