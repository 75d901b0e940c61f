package handlers

import (
	"net/http"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	validator       *utils.Validator
}

func NewResponseHandler(
	responseService services.ResponseService,
	validator *utils.Validator,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		validator:       validator,
	}
}

// Record autosaves a single answer during a live attempt
func (h *ResponseHandler) Record(c *gin.Context) {
	var req services.RecordResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err)
		return
	}

	if err := h.responseService.Record(c.Request.Context(), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: services.StatusSaved})
}
