package handler

import "github.com/labstack/echo/v4"

// successResponse is the canonical success envelope. Data is always present,
// even when null: a found-but-empty result is still a success.
type successResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Success bool   `json:"success"`
}

// failureResponse is the canonical failure envelope.
type failureResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
	Success bool   `json:"success"`
}

func respondSuccess(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, successResponse{
		Status:  status,
		Message: message,
		Data:    data,
		Success: true,
	})
}

func respondFailure(c echo.Context, status int, message string, errDetail any) error {
	return c.JSON(status, failureResponse{
		Status:  status,
		Message: message,
		Error:   errDetail,
		Success: false,
	})
}
