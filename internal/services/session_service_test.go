package services

import (
	"context"
	"testing"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/events"
	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockScoringService is a mock implementation of ScoringService
type MockScoringService struct {
	mock.Mock
}

func (m *MockScoringService) Score(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error) {
	args := m.Called(ctx, candidateID, testID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScoreReport), args.Error(1)
}

func (m *MockScoringService) GetReport(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error) {
	args := m.Called(ctx, candidateID, testID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScoreReport), args.Error(1)
}

func (m *MockScoringService) BuildReportData(ctx context.Context, candidateID, testID uint, attemptNumber int) (*ScoreReportData, error) {
	args := m.Called(ctx, candidateID, testID, attemptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ScoreReportData), args.Error(1)
}

// ===== FIXTURES =====

func sessionFixture() (*models.ExamSession, *models.SectionStatus, *models.TestSection) {
	category := models.QuestionCategory{ID: 1, Name: "Quantitative"}
	section := &models.TestSection{
		ID:              11,
		TestID:          5,
		CategoryID:      1,
		EasyQuestions:   2,
		DurationMinutes: 10,
		Category:        category,
	}

	sectionID := section.ID
	startedAt := time.Now().Add(-2 * time.Minute)
	session := &models.ExamSession{
		ID:            31,
		AssignmentID:  21,
		AttemptNumber: 1,
		StartedAt:     startedAt,
		Assignment: models.TestAssignment{
			ID:          21,
			CandidateID: 7,
			TestID:      5,
			MaxAttempts: 2,
			Test:        models.Test{ID: 5, Name: "Aptitude Screening"},
		},
		CurrentSectionID: &sectionID,
		SectionStartedAt: &startedAt,
	}
	status := &models.SectionStatus{
		ID:        41,
		SessionID: session.ID,
		SectionID: section.ID,
		StartedAt: startedAt,
		Section:   *section,
	}
	return session, status, section
}

func questionOrderFixture(sessionID, sectionID uint) []*models.SectionQuestionOrder {
	category := models.QuestionCategory{ID: 1, Name: "Quantitative"}
	return []*models.SectionQuestionOrder{
		{
			SessionID: sessionID, SectionID: sectionID, QuestionID: 101, DisplayOrder: 1,
			Question: models.Question{
				ID: 101, CategoryID: 1, Text: "What is 2 + 2?",
				Difficulty: models.DifficultyEasy, Type: models.QuestionTypeMCQ,
				Options: datatypes.JSONSlice[string]{"3", "4"}, CorrectAnswer: "4",
				Category: category,
			},
		},
		{
			SessionID: sessionID, SectionID: sectionID, QuestionID: 102, DisplayOrder: 2,
			Question: models.Question{
				ID: 102, CategoryID: 1, Text: "What is 3 * 3?",
				Difficulty: models.DifficultyEasy, Type: models.QuestionTypeMCQ,
				Options: datatypes.JSONSlice[string]{"6", "9"}, CorrectAnswer: "9",
				Category: category,
			},
		},
	}
}

func newSessionServiceForTest(repo *MockRepository, scoring ScoringService, publisher events.EventPublisher) SessionService {
	return NewSessionService(repo, testLogger(), utils.NewValidator(), scoring, publisher, nil, nil)
}

// ===== TESTS =====

func TestSessionService_ResumeOrAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("inside the window returns the current section", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.SessionsMock.On("GetQuestionOrder", ctx, session.ID, section.ID).
			Return(questionOrderFixture(session.ID, section.ID), nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		view, err := service.ResumeOrAdvance(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.NoError(t, err)
		assert.Equal(t, StatusOK, view.Status)
		assert.Equal(t, section.ID, view.SectionID)
		assert.Len(t, view.Questions, 2)
		assert.Greater(t, view.TimeLeftSeconds, 0)
		// Started 2 minutes into a 10 minute window.
		assert.LessOrEqual(t, view.TimeLeftSeconds, 8*60)
		repo.AssertExpectations(t)
	})

	t.Run("lapsed window auto-submits at the deadline and advances once", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()

		// 10 minute section started 11 minutes ago: one minute past deadline.
		startedAt := time.Now().Add(-11 * time.Minute)
		status.StartedAt = startedAt
		deadline := status.Deadline()

		category2 := models.QuestionCategory{ID: 2, Name: "Verbal"}
		next := &models.TestSection{
			ID: 12, TestID: 5, CategoryID: 2, EasyQuestions: 1, DurationMinutes: 15, Category: category2,
		}
		nextStatus := &models.SectionStatus{
			ID: 42, SessionID: session.ID, SectionID: next.ID, StartedAt: time.Now(), Section: *next,
		}

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.SessionsMock.On("CompleteSection", ctx, status.ID, deadline, true).Return(nil)
		repo.TestsMock.On("NextSection", ctx, uint(5), section.ID).Return(next, nil)
		repo.SessionsMock.On("SetCurrentSection", ctx, session.ID, next.ID, mock.AnythingOfType("time.Time")).Return(nil)
		repo.SessionsMock.On("OpenSectionStatus", ctx, session.ID, next.ID, mock.AnythingOfType("time.Time")).Return(nextStatus, nil)
		repo.SessionsMock.On("GetQuestionOrder", ctx, session.ID, next.ID).
			Return(questionOrderFixture(session.ID, next.ID), nil)

		publisher := events.NewMockEventPublisher(utils.ToSlogLogger(testLogger()))
		service := newSessionServiceForTest(repo, &MockScoringService{}, publisher)
		view, err := service.ResumeOrAdvance(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.NoError(t, err)
		assert.Equal(t, StatusOK, view.Status)
		assert.Equal(t, next.ID, view.SectionID, "moved into the following section")
		assert.Equal(t, 15, view.DurationMinutes)
		repo.AssertExpectations(t)

		published := publisher.GetPublishedEvents()
		assert.Len(t, published, 1)
		assert.Equal(t, events.EventSectionSubmitted, published[0].Type)
	})

	t.Run("lapsed final section completes the session and scores it", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()
		status.StartedAt = time.Now().Add(-30 * time.Minute)
		deadline := status.Deadline()

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.SessionsMock.On("CompleteSection", ctx, status.ID, deadline, true).Return(nil)
		repo.TestsMock.On("NextSection", ctx, uint(5), section.ID).Return(nil, nil)
		repo.SessionsMock.On("MarkCompleted", ctx, session.ID, mock.AnythingOfType("time.Time")).Return(nil)

		scoring := &MockScoringService{}
		scoring.On("Score", ctx, uint(7), uint(5), 1).Return(&models.ScoreReport{
			CandidateID: 7, TestID: 5, AttemptNumber: 1,
			Score: decimal.NewFromInt(1), MaxScore: decimal.NewFromInt(4),
		}, nil)

		service := newSessionServiceForTest(repo, scoring, nil)
		view, err := service.ResumeOrAdvance(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, view.Status)
		assert.Empty(t, view.Questions)
		repo.AssertExpectations(t)
		scoring.AssertExpectations(t)
	})

	t.Run("scoring failure still closes the session", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()
		status.StartedAt = time.Now().Add(-30 * time.Minute)

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.SessionsMock.On("CompleteSection", ctx, status.ID, status.Deadline(), true).Return(nil)
		repo.TestsMock.On("NextSection", ctx, uint(5), section.ID).Return(nil, nil)
		repo.SessionsMock.On("MarkCompleted", ctx, session.ID, mock.AnythingOfType("time.Time")).Return(nil)

		scoring := &MockScoringService{}
		scoring.On("Score", ctx, uint(7), uint(5), 1).Return(nil, assert.AnError)

		service := newSessionServiceForTest(repo, scoring, nil)
		view, err := service.ResumeOrAdvance(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.NoError(t, err)
		assert.Equal(t, StatusScorePending, view.Status)
	})

	t.Run("completed session reports completed", func(t *testing.T) {
		repo := NewMockRepository()
		session, _, _ := sessionFixture()
		session.Completed = true

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		view, err := service.ResumeOrAdvance(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, view.Status)
	})

	t.Run("unknown attempt", func(t *testing.T) {
		repo := NewMockRepository()
		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 9).Return(nil, gorm.ErrRecordNotFound)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.ResumeOrAdvance(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 9})

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSessionService_SubmitSection(t *testing.T) {
	ctx := context.Background()

	t.Run("saving without finishing keeps the section open", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()
		order := questionOrderFixture(session.ID, section.ID)

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.QuestionsMock.On("GetByID", ctx, uint(101)).Return(&order[0].Question, nil)
		repo.ResponsesMock.On("Get", ctx, uint(7), uint(5), uint(101), 1).Return(nil, gorm.ErrRecordNotFound)
		repo.ResponsesMock.On("Save", ctx, mock.AnythingOfType("*models.Response")).Return(nil)
		repo.SessionsMock.On("GetQuestionOrder", ctx, session.ID, section.ID).Return(order, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		view, err := service.SubmitSection(ctx, &SubmitSectionRequest{
			CandidateID: 7, TestID: 5, AttemptNumber: 1, SectionID: section.ID,
			Responses: []AnswerSubmission{{QuestionID: 101, Answer: "B"}},
		})

		assert.NoError(t, err)
		assert.Equal(t, StatusSaved, view.Status)
		assert.Equal(t, section.ID, view.SectionID)
		repo.AssertExpectations(t)
	})

	t.Run("explicit submission closes the section and advances", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()
		order := questionOrderFixture(session.ID, section.ID)

		category2 := models.QuestionCategory{ID: 2, Name: "Verbal"}
		next := &models.TestSection{ID: 12, TestID: 5, CategoryID: 2, EasyQuestions: 1, DurationMinutes: 15, Category: category2}
		nextStatus := &models.SectionStatus{ID: 42, SessionID: session.ID, SectionID: next.ID, StartedAt: time.Now(), Section: *next}

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.QuestionsMock.On("GetByID", ctx, uint(101)).Return(&order[0].Question, nil)
		repo.ResponsesMock.On("Get", ctx, uint(7), uint(5), uint(101), 1).Return(nil, gorm.ErrRecordNotFound)
		repo.ResponsesMock.On("Save", ctx, mock.AnythingOfType("*models.Response")).Return(nil)
		repo.SessionsMock.On("CompleteSection", ctx, status.ID, mock.AnythingOfType("time.Time"), false).Return(nil)
		repo.TestsMock.On("NextSection", ctx, uint(5), section.ID).Return(next, nil)
		repo.SessionsMock.On("SetCurrentSection", ctx, session.ID, next.ID, mock.AnythingOfType("time.Time")).Return(nil)
		repo.SessionsMock.On("OpenSectionStatus", ctx, session.ID, next.ID, mock.AnythingOfType("time.Time")).Return(nextStatus, nil)
		repo.SessionsMock.On("GetQuestionOrder", ctx, session.ID, next.ID).Return(questionOrderFixture(session.ID, next.ID), nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		view, err := service.SubmitSection(ctx, &SubmitSectionRequest{
			CandidateID: 7, TestID: 5, AttemptNumber: 1, SectionID: section.ID,
			Responses: []AnswerSubmission{{QuestionID: 101, Answer: "B"}},
			Explicit:  true,
		})

		assert.NoError(t, err)
		assert.Equal(t, StatusSectionSaved, view.Status)
		assert.Equal(t, next.ID, view.SectionID)
		repo.AssertExpectations(t)
	})

	t.Run("submitting a section that is not current", func(t *testing.T) {
		repo := NewMockRepository()
		session, _, _ := sessionFixture()

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("CompletedSectionIDs", ctx, session.ID).Return([]uint{}, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.SubmitSection(ctx, &SubmitSectionRequest{
			CandidateID: 7, TestID: 5, AttemptNumber: 1, SectionID: 99,
		})

		assert.ErrorIs(t, err, ErrOutOfOrderSection)
	})

	t.Run("re-submitting an earlier section", func(t *testing.T) {
		repo := NewMockRepository()
		session, _, _ := sessionFixture()

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("CompletedSectionIDs", ctx, session.ID).Return([]uint{10}, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.SubmitSection(ctx, &SubmitSectionRequest{
			CandidateID: 7, TestID: 5, AttemptNumber: 1, SectionID: 10,
		})

		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("re-submitting the current section after completion", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()
		status.IsCompleted = true

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.SubmitSection(ctx, &SubmitSectionRequest{
			CandidateID: 7, TestID: 5, AttemptNumber: 1, SectionID: section.ID,
		})

		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("closed session rejects submissions", func(t *testing.T) {
		repo := NewMockRepository()
		session, _, section := sessionFixture()
		session.Completed = true

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.SubmitSection(ctx, &SubmitSectionRequest{
			CandidateID: 7, TestID: 5, AttemptNumber: 1, SectionID: section.ID,
		})

		assert.ErrorIs(t, err, ErrSessionClosed)
	})
}

func TestSessionService_SubmitTest(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the open section and the session", func(t *testing.T) {
		repo := NewMockRepository()
		session, status, section := sessionFixture()

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)
		repo.SessionsMock.On("GetSectionStatus", ctx, session.ID, section.ID).Return(status, nil)
		repo.SessionsMock.On("CompleteSection", ctx, status.ID, mock.AnythingOfType("time.Time"), false).Return(nil)
		repo.SessionsMock.On("MarkCompleted", ctx, session.ID, mock.AnythingOfType("time.Time")).Return(nil)

		scoring := &MockScoringService{}
		scoring.On("Score", ctx, uint(7), uint(5), 1).Return(&models.ScoreReport{
			CandidateID: 7, TestID: 5, AttemptNumber: 1,
			Score: decimal.NewFromInt(2), MaxScore: decimal.NewFromInt(4),
		}, nil)

		service := newSessionServiceForTest(repo, scoring, nil)
		view, err := service.SubmitTest(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.NoError(t, err)
		assert.Equal(t, StatusCompleted, view.Status)
		repo.AssertExpectations(t)
		scoring.AssertExpectations(t)
	})

	t.Run("already completed", func(t *testing.T) {
		repo := NewMockRepository()
		session, _, _ := sessionFixture()
		session.Completed = true

		repo.SessionsMock.On("GetByAttempt", ctx, uint(7), uint(5), 1).Return(session, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.SubmitTest(ctx, &ResumeRequest{CandidateID: 7, TestID: 5, AttemptNumber: 1})

		assert.ErrorIs(t, err, ErrSessionClosed)
	})
}

func TestSessionService_LookupOpenSession(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the latest open attempt", func(t *testing.T) {
		repo := NewMockRepository()
		session, _, section := sessionFixture()
		session.CurrentSection = section

		repo.SessionsMock.On("GetOpenSession", ctx, uint(7), uint(5)).Return(session, nil)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		view, err := service.LookupOpenSession(ctx, 7, 5)

		assert.NoError(t, err)
		assert.Equal(t, session.ID, view.SessionID)
		assert.Equal(t, "Aptitude Screening", view.TestName)
		assert.Equal(t, "Quantitative", view.SectionName)
	})

	t.Run("nothing open", func(t *testing.T) {
		repo := NewMockRepository()
		repo.SessionsMock.On("GetOpenSession", ctx, uint(7), uint(5)).Return(nil, gorm.ErrRecordNotFound)

		service := newSessionServiceForTest(repo, &MockScoringService{}, nil)
		_, err := service.LookupOpenSession(ctx, 7, 5)

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSectionViewer_FreezeQuestionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()
	session, _, section := sessionFixture()
	questions, _ := scoringFixture()
	frozen := questionOrderFixture(session.ID, section.ID)

	// First read finds nothing, the shuffle is persisted, then replayed.
	repo.SessionsMock.On("GetQuestionOrder", ctx, session.ID, section.ID).
		Return([]*models.SectionQuestionOrder{}, nil).Once()
	repo.TestsMock.On("GetQuestionSet", ctx, uint(5)).Return(questions, nil)
	repo.SessionsMock.On("SaveQuestionOrder", ctx, mock.MatchedBy(func(rows []*models.SectionQuestionOrder) bool {
		if len(rows) != 2 {
			return false
		}
		for i, row := range rows {
			if row.DisplayOrder != i+1 || row.SessionID != session.ID || row.SectionID != section.ID {
				return false
			}
		}
		return true
	})).Return(nil)
	repo.SessionsMock.On("GetQuestionOrder", ctx, session.ID, section.ID).Return(frozen, nil)

	viewer := &sectionViewer{repo: repo, logger: testLogger()}
	views, err := viewer.materializeQuestions(ctx, session, section)

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, uint(101), views[0].ID, "stored order wins over any reshuffle")
	repo.AssertExpectations(t)
}
