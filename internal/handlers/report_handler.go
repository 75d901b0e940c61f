package handlers

import (
	"net/http"
	"strconv"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	BaseHandler
	scoringService services.ScoringService
	validator      *utils.Validator
}

func NewReportHandler(
	scoringService services.ScoringService,
	validator *utils.Validator,
	logger utils.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
		validator:      validator,
	}
}

// GetReport returns the persisted score for a candidate's attempt.
// Omitting attempt returns the latest one.
func (h *ReportHandler) GetReport(c *gin.Context) {
	candidateID := h.parseUintQuery(c, "candidate_id")
	testID := h.parseUintQuery(c, "test_id")
	if candidateID == 0 || testID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "candidate_id and test_id query parameters are required",
		})
		return
	}
	attempt, _ := strconv.Atoi(c.Query("attempt"))

	report, err := h.scoringService.GetReport(c.Request.Context(), candidateID, testID, attempt)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: services.StatusOK, Data: report})
}

// GetReportDetail returns the full breakdown the renderer sees, recomputed on
// the fly from the stored responses.
func (h *ReportHandler) GetReportDetail(c *gin.Context) {
	candidateID := h.parseUintQuery(c, "candidate_id")
	testID := h.parseUintQuery(c, "test_id")
	attempt, _ := strconv.Atoi(c.Query("attempt"))
	if candidateID == 0 || testID == 0 || attempt == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "candidate_id, test_id and attempt query parameters are required",
		})
		return
	}

	data, err := h.scoringService.BuildReportData(c.Request.Context(), candidateID, testID, attempt)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: services.StatusOK, Data: data})
}
