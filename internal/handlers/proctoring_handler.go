package handlers

import (
	"net/http"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProctoringHandler struct {
	BaseHandler
	proctoringService services.ProctoringService
	validator         *utils.Validator
}

func NewProctoringHandler(
	proctoringService services.ProctoringService,
	validator *utils.Validator,
	logger utils.Logger,
) *ProctoringHandler {
	return &ProctoringHandler{
		BaseHandler:       NewBaseHandler(logger),
		proctoringService: proctoringService,
		validator:         validator,
	}
}

// RecordEvent stores a heartbeat or violation observed during a session
func (h *ProctoringHandler) RecordEvent(c *gin.Context) {
	var req services.RecordProctoringEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	if err := h.proctoringService.RecordEvent(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: services.StatusOK})
}

// SessionTiming serves the live countdown for the proctoring UI
func (h *ProctoringHandler) SessionTiming(c *gin.Context) {
	sessionID := h.parseIDParam(c, "session_id")
	if sessionID == 0 {
		return
	}

	timing, err := h.proctoringService.SessionTiming(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, timing)
}
