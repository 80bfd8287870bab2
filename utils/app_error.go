package utils

import (
	"fmt"
	"net/http"
)

// AppError is an operational failure whose message is safe to return to the client.
type AppError struct {
	StatusCode int
	Status     string
	Message    string
}

func NewAppError(message string, statusCode int) *AppError {
	status := StatusFail
	if statusCode >= http.StatusInternalServerError {
		status = StatusError
	}
	return &AppError{
		StatusCode: statusCode,
		Status:     status,
		Message:    message,
	}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

func BadRequest(message string) *AppError {
	return NewAppError(message, http.StatusBadRequest)
}

// NotFound builds the "No <entity> found with that ID" error.
func NotFound(entity string) *AppError {
	return NewAppError(fmt.Sprintf("No %s found with that ID", entity), http.StatusNotFound)
}
