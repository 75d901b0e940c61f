package handlers

import (
	"net/http"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
}

func NewTestHandler(testService services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
	}
}

// GetTest returns a test blueprint with its sections and any feasibility
// issues against the current question bank
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	detail, err := h.testService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
