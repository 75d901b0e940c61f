package services

import (
	"github.com/dejoyjm/shreds-platform/internal/cache"
	"github.com/dejoyjm/shreds-platform/internal/events"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
)

// ServiceManager bundles the domain services behind one handle for the
// HTTP layer.
type ServiceManager interface {
	Assignment() AssignmentService
	Session() SessionService
	Response() ResponseService
	Scoring() ScoringService
	Candidate() CandidateService
	Proctoring() ProctoringService
	Test() TestService
}

type serviceManager struct {
	assignment AssignmentService
	session    SessionService
	response   ResponseService
	scoring    ScoringService
	candidate  CandidateService
	proctoring ProctoringService
	test       TestService
}

type ManagerConfig struct {
	Repo      repositories.Repository
	Logger    utils.Logger
	Validator *utils.Validator
	Publisher events.EventPublisher
	Timing    cache.LiveTiming
	Renderer  ReportRenderer
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	scoring := NewScoringService(cfg.Repo, cfg.Logger)
	session := NewSessionService(cfg.Repo, cfg.Logger, cfg.Validator, scoring, cfg.Publisher, cfg.Timing, cfg.Renderer)
	return &serviceManager{
		assignment: NewAssignmentService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.Publisher, cfg.Timing),
		session:    session,
		response:   NewResponseService(cfg.Repo, cfg.Logger, cfg.Validator),
		scoring:    scoring,
		candidate:  NewCandidateService(cfg.Repo, cfg.Logger, cfg.Validator),
		proctoring: NewProctoringService(cfg.Repo, cfg.Logger, cfg.Validator, cfg.Publisher, cfg.Timing),
		test:       NewTestService(cfg.Repo, cfg.Logger),
	}
}

func (m *serviceManager) Assignment() AssignmentService { return m.assignment }
func (m *serviceManager) Session() SessionService       { return m.session }
func (m *serviceManager) Response() ResponseService     { return m.response }
func (m *serviceManager) Scoring() ScoringService       { return m.scoring }
func (m *serviceManager) Candidate() CandidateService   { return m.candidate }
func (m *serviceManager) Proctoring() ProctoringService { return m.proctoring }
func (m *serviceManager) Test() TestService             { return m.test }
