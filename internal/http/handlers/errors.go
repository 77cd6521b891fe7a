package handlers

import (
	"errors"
	"net/http"

	"task_tracker/internal/logger"

	"github.com/gin-gonic/gin"
)

var ErrValidation = errors.New("validation failed")

const (
	msgValidationFailed = "Validation failed"
	msgInternalError    = "Internal server error"
)

// ErrorResponse is the body of every 4xx/5xx answer from the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// validationError carries a client-facing reason.
type validationError struct {
	reason string
}

func (e *validationError) Error() string { return e.reason }
func (e *validationError) Unwrap() error { return ErrValidation }

func invalid(reason string) error {
	return &validationError{reason: reason}
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Message: err.Error()})
}

// internalError logs err and answers 500; the error text is only included
// in verbose mode.
func (h *Handler) internalError(c *gin.Context, err error) {
	logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	resp := ErrorResponse{Error: msgInternalError}
	if h.Verbose {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusInternalServerError, resp)
}
