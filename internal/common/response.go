package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every request the service refuses to
// process. Successful and partially failed inspections use their own body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func SendSuccess(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

func SendError(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func SendBadRequest(c echo.Context, message string) error {
	return SendError(c, http.StatusBadRequest, message)
}

func SendPayloadTooLarge(c echo.Context, message string) error {
	return SendError(c, http.StatusRequestEntityTooLarge, message)
}

func SendInternalError(c echo.Context, message string) error {
	return SendError(c, http.StatusInternalServerError, message)
}
