package handlers

import (
	"net/http"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	BaseHandler
	candidateService services.CandidateService
	validator        *utils.Validator
}

func NewCandidateHandler(
	candidateService services.CandidateService,
	validator *utils.Validator,
	logger utils.Logger,
) *CandidateHandler {
	return &CandidateHandler{
		BaseHandler:      NewBaseHandler(logger),
		candidateService: candidateService,
		validator:        validator,
	}
}

// Verify checks a candidate's secret codes and lists their assignments
func (h *CandidateHandler) Verify(c *gin.Context) {
	var req services.VerifySecretsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	// The secrets themselves never reach the logs.
	h.LogRequest(c, "Verifying candidate", "email", req.Email)

	result, err := h.candidateService.VerifySecrets(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: services.StatusOK, Data: result})
}
