package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response. Status carries the
// machine-checkable token clients branch on; Message is for humans.
type ErrorResponse struct {
	Status  string      `json:"status,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// StatusResponse wraps a payload with its status token
type StatusResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// RespondBadRequest sends a 400 for malformed or invalid payloads
func (h *BaseHandler) RespondBadRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Message: message,
		Details: err.Error(),
	})
}

// HandleServiceError maps service-level errors onto HTTP statuses and status
// tokens. Anything unmapped is an internal failure.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	token := services.StatusToken(err)

	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsWindowError(err), errors.Is(err, services.ErrAttemptsExhausted):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Status:  token,
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrOutOfOrderSection),
		errors.Is(err, services.ErrAlreadySubmitted),
		errors.Is(err, services.ErrSessionClosed),
		errors.Is(err, services.ErrNoCurrentSection),
		errors.Is(err, services.ErrStorageConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Status:  token,
			Message: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// parseIDParam extracts and validates a uint path parameter. Responds with
// 400 and returns 0 when the value is unusable.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	value, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param + " parameter",
		})
		return 0
	}
	return uint(value)
}

// parseUintQuery extracts an optional uint query parameter, zero when absent.
func (h *BaseHandler) parseUintQuery(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}
