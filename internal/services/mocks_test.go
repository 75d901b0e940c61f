package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/stretchr/testify/mock"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// MockTestRepository is a mock implementation of TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetSections(ctx context.Context, testID uint) ([]*models.TestSection, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestSection), args.Error(1)
}

func (m *MockTestRepository) GetSectionByID(ctx context.Context, id uint) (*models.TestSection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestSection), args.Error(1)
}

func (m *MockTestRepository) NextSection(ctx context.Context, testID, afterSectionID uint) (*models.TestSection, error) {
	args := m.Called(ctx, testID, afterSectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestSection), args.Error(1)
}

func (m *MockTestRepository) GetQuestionSet(ctx context.Context, testID uint) ([]*models.Question, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockTestRepository) CountQuestionSet(ctx context.Context, testID uint) (int64, error) {
	args := m.Called(ctx, testID)
	return args.Get(0).(int64), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByCategoryAndDifficulty(ctx context.Context, categoryID uint, difficulty models.DifficultyLevel) (int64, error) {
	args := m.Called(ctx, categoryID, difficulty)
	return args.Get(0).(int64), args.Error(1)
}

// MockCandidateRepository is a mock implementation of CandidateRepository
type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) GetByID(ctx context.Context, id uint) (*models.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) FindBySecrets(ctx context.Context, email, phone, secret1, secret2 string) (*models.Candidate, error) {
	args := m.Called(ctx, email, phone, secret1, secret2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Candidate), args.Error(1)
}

// MockAssignmentRepository is a mock implementation of AssignmentRepository
type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) GetByCandidateAndTest(ctx context.Context, candidateID, testID uint) (*models.TestAssignment, error) {
	args := m.Called(ctx, candidateID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]*models.TestAssignment, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TestAssignment), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.ExamSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uint) (*models.ExamSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockSessionRepository) GetByAttempt(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ExamSession, error) {
	args := m.Called(ctx, candidateID, testID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockSessionRepository) GetOpenSession(ctx context.Context, candidateID, testID uint) (*models.ExamSession, error) {
	args := m.Called(ctx, candidateID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamSession), args.Error(1)
}

func (m *MockSessionRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	args := m.Called(ctx, assignmentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) SetCurrentSection(ctx context.Context, sessionID, sectionID uint, startedAt time.Time) error {
	args := m.Called(ctx, sessionID, sectionID, startedAt)
	return args.Error(0)
}

func (m *MockSessionRepository) MarkCompleted(ctx context.Context, sessionID uint, at time.Time) error {
	args := m.Called(ctx, sessionID, at)
	return args.Error(0)
}

func (m *MockSessionRepository) GetSectionStatus(ctx context.Context, sessionID, sectionID uint) (*models.SectionStatus, error) {
	args := m.Called(ctx, sessionID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SectionStatus), args.Error(1)
}

func (m *MockSessionRepository) OpenSectionStatus(ctx context.Context, sessionID, sectionID uint, startedAt time.Time) (*models.SectionStatus, error) {
	args := m.Called(ctx, sessionID, sectionID, startedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SectionStatus), args.Error(1)
}

func (m *MockSessionRepository) CompleteSection(ctx context.Context, statusID uint, submittedAt time.Time, autoSubmitted bool) error {
	args := m.Called(ctx, statusID, submittedAt, autoSubmitted)
	return args.Error(0)
}

func (m *MockSessionRepository) CompletedSectionIDs(ctx context.Context, sessionID uint) ([]uint, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockSessionRepository) GetQuestionOrder(ctx context.Context, sessionID, sectionID uint) ([]*models.SectionQuestionOrder, error) {
	args := m.Called(ctx, sessionID, sectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SectionQuestionOrder), args.Error(1)
}

func (m *MockSessionRepository) SaveQuestionOrder(ctx context.Context, rows []*models.SectionQuestionOrder) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Get(ctx context.Context, candidateID, testID, questionID uint, attemptNumber int) (*models.Response, error) {
	args := m.Called(ctx, candidateID, testID, questionID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) Save(ctx context.Context, response *models.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) Archive(ctx context.Context, archived *models.ArchivedResponse) error {
	args := m.Called(ctx, archived)
	return args.Error(0)
}

func (m *MockResponseRepository) ListByAttempt(ctx context.Context, candidateID, testID uint, attemptNumber int) ([]*models.Response, error) {
	args := m.Called(ctx, candidateID, testID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Response), args.Error(1)
}

func (m *MockResponseRepository) CountArchivedForQuestion(ctx context.Context, candidateID, testID, questionID uint, attemptNumber int) (int64, error) {
	args := m.Called(ctx, candidateID, testID, questionID, attemptNumber)
	return args.Get(0).(int64), args.Error(1)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Upsert(ctx context.Context, report *models.ScoreReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) Get(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error) {
	args := m.Called(ctx, candidateID, testID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScoreReport), args.Error(1)
}

func (m *MockReportRepository) GetLatest(ctx context.Context, candidateID, testID uint) (*models.ScoreReport, error) {
	args := m.Called(ctx, candidateID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScoreReport), args.Error(1)
}

// MockProctoringRepository is a mock implementation of ProctoringRepository
type MockProctoringRepository struct {
	mock.Mock
}

func (m *MockProctoringRepository) CreateEvent(ctx context.Context, event *models.ProctoringEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockProctoringRepository) ListBySession(ctx context.Context, sessionID uint) ([]*models.ProctoringEvent, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProctoringEvent), args.Error(1)
}

// MockRepository aggregates the per-entity mocks. WithTransaction runs the
// callback against the same mocks; the services under test only care that
// the calls happen, not that a real transaction wraps them.
type MockRepository struct {
	TestsMock       MockTestRepository
	QuestionsMock   MockQuestionRepository
	CandidatesMock  MockCandidateRepository
	AssignmentsMock MockAssignmentRepository
	SessionsMock    MockSessionRepository
	ResponsesMock   MockResponseRepository
	ReportsMock     MockReportRepository
	ProctoringMock  MockProctoringRepository

	TxErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) Tests() repositories.TestRepository             { return &m.TestsMock }
func (m *MockRepository) Questions() repositories.QuestionRepository     { return &m.QuestionsMock }
func (m *MockRepository) Candidates() repositories.CandidateRepository   { return &m.CandidatesMock }
func (m *MockRepository) Assignments() repositories.AssignmentRepository { return &m.AssignmentsMock }
func (m *MockRepository) Sessions() repositories.SessionRepository       { return &m.SessionsMock }
func (m *MockRepository) Responses() repositories.ResponseRepository     { return &m.ResponsesMock }
func (m *MockRepository) Reports() repositories.ReportRepository         { return &m.ReportsMock }
func (m *MockRepository) Proctoring() repositories.ProctoringRepository  { return &m.ProctoringMock }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if m.TxErr != nil {
		return m.TxErr
	}
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }

func (m *MockRepository) AssertExpectations(t mock.TestingT) {
	m.TestsMock.AssertExpectations(t)
	m.QuestionsMock.AssertExpectations(t)
	m.CandidatesMock.AssertExpectations(t)
	m.AssignmentsMock.AssertExpectations(t)
	m.SessionsMock.AssertExpectations(t)
	m.ResponsesMock.AssertExpectations(t)
	m.ReportsMock.AssertExpectations(t)
	m.ProctoringMock.AssertExpectations(t)
}
