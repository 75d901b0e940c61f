package handlers

import (
	"net/http"

	"github.com/dejoyjm/shreds-platform/internal/services"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessionHandler    *SessionHandler
	candidateHandler  *CandidateHandler
	responseHandler   *ResponseHandler
	reportHandler     *ReportHandler
	proctoringHandler *ProctoringHandler
	testHandler       *TestHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler:    NewSessionHandler(serviceManager.Assignment(), serviceManager.Session(), validator, logger),
		candidateHandler:  NewCandidateHandler(serviceManager.Candidate(), validator, logger),
		responseHandler:   NewResponseHandler(serviceManager.Response(), validator, logger),
		reportHandler:     NewReportHandler(serviceManager.Scoring(), validator, logger),
		proctoringHandler: NewProctoringHandler(serviceManager.Proctoring(), validator, logger),
		testHandler:       NewTestHandler(serviceManager.Test(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		candidates := v1.Group("/candidates")
		{
			candidates.POST("/verify", hm.candidateHandler.Verify)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", hm.sessionHandler.StartSession)
			sessions.POST("/resume", hm.sessionHandler.Resume)
			sessions.POST("/lookup", hm.sessionHandler.Lookup)
			sessions.POST("/submit-section", hm.sessionHandler.SubmitSection)
			sessions.POST("/submit-test", hm.sessionHandler.SubmitTest)
		}

		v1.POST("/responses", hm.responseHandler.Record)

		reports := v1.Group("/reports")
		{
			reports.GET("", hm.reportHandler.GetReport)
			reports.GET("/detail", hm.reportHandler.GetReportDetail)
		}

		proctoring := v1.Group("/proctoring")
		{
			proctoring.POST("/events", hm.proctoringHandler.RecordEvent)
			proctoring.GET("/timing/:session_id", hm.proctoringHandler.SessionTiming)
		}

		tests := v1.Group("/tests")
		{
			tests.GET("/:id", hm.testHandler.GetTest)
		}
	}
}

// HealthCheck responds to liveness probes
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
