package handlers

import (
	"net/http"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	sessionService    services.SessionService
	validator         *utils.Validator
}

func NewSessionHandler(
	assignmentService services.AssignmentService,
	sessionService services.SessionService,
	validator *utils.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		sessionService:    sessionService,
		validator:         validator,
	}
}

// StartSession opens a new attempt or re-enters an open one
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Starting exam session",
		"candidate_id", req.CandidateID,
		"test_id", req.TestID)

	view, err := h.assignmentService.StartSession(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Resume settles timing and returns the section the candidate should see
func (h *SessionHandler) Resume(c *gin.Context) {
	var req services.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	view, err := h.sessionService.ResumeOrAdvance(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Lookup finds the latest open session for a reconnecting client
func (h *SessionHandler) Lookup(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	view, err := h.sessionService.LookupOpenSession(c.Request.Context(), req.CandidateID, req.TestID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitSection records a batch of answers and optionally closes the section
func (h *SessionHandler) SubmitSection(c *gin.Context) {
	var req services.SubmitSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Submitting section",
		"candidate_id", req.CandidateID,
		"test_id", req.TestID,
		"section_id", req.SectionID,
		"answers", len(req.Responses),
		"explicit", req.Explicit)

	view, err := h.sessionService.SubmitSection(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitTest closes the whole session and triggers scoring
func (h *SessionHandler) SubmitTest(c *gin.Context) {
	var req services.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Submitting whole test",
		"candidate_id", req.CandidateID,
		"test_id", req.TestID,
		"attempt_number", req.AttemptNumber)

	view, err := h.sessionService.SubmitTest(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
