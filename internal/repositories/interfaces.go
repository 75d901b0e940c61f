package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories behind one handle.
// WithTransaction yields a Repository bound to a single transaction; the
// unique constraints declared on the models act as conflict detectors inside
// it.
type Repository interface {
	Tests() TestRepository
	Questions() QuestionRepository
	Candidates() CandidateRepository
	Assignments() AssignmentRepository
	Sessions() SessionRepository
	Responses() ResponseRepository
	Reports() ReportRepository
	Proctoring() ProctoringRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
}

type TestRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetSections(ctx context.Context, testID uint) ([]*models.TestSection, error)
	GetSectionByID(ctx context.Context, id uint) (*models.TestSection, error)
	// NextSection returns the section with the lowest ID strictly greater
	// than afterSectionID, or nil when the test has no further sections.
	NextSection(ctx context.Context, testID, afterSectionID uint) (*models.TestSection, error)
	GetQuestionSet(ctx context.Context, testID uint) ([]*models.Question, error)
	CountQuestionSet(ctx context.Context, testID uint) (int64, error)
}

type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	CountByCategoryAndDifficulty(ctx context.Context, categoryID uint, difficulty models.DifficultyLevel) (int64, error)
}

type CandidateRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Candidate, error)
	FindBySecrets(ctx context.Context, email, phone, secret1, secret2 string) (*models.Candidate, error)
}

type AssignmentRepository interface {
	GetByCandidateAndTest(ctx context.Context, candidateID, testID uint) (*models.TestAssignment, error)
	ListByCandidate(ctx context.Context, candidateID uint) ([]*models.TestAssignment, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.ExamSession) error
	GetByID(ctx context.Context, id uint) (*models.ExamSession, error)
	GetByAttempt(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ExamSession, error)
	// GetOpenSession returns the latest uncompleted session for the pair, or
	// a not-found error when none exists.
	GetOpenSession(ctx context.Context, candidateID, testID uint) (*models.ExamSession, error)
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
	SetCurrentSection(ctx context.Context, sessionID, sectionID uint, startedAt time.Time) error
	MarkCompleted(ctx context.Context, sessionID uint, at time.Time) error

	GetSectionStatus(ctx context.Context, sessionID, sectionID uint) (*models.SectionStatus, error)
	// OpenSectionStatus creates the status row if absent and returns the
	// surviving row either way.
	OpenSectionStatus(ctx context.Context, sessionID, sectionID uint, startedAt time.Time) (*models.SectionStatus, error)
	CompleteSection(ctx context.Context, statusID uint, submittedAt time.Time, autoSubmitted bool) error
	CompletedSectionIDs(ctx context.Context, sessionID uint) ([]uint, error)

	GetQuestionOrder(ctx context.Context, sessionID, sectionID uint) ([]*models.SectionQuestionOrder, error)
	SaveQuestionOrder(ctx context.Context, rows []*models.SectionQuestionOrder) error
}

type ResponseRepository interface {
	Get(ctx context.Context, candidateID, testID, questionID uint, attemptNumber int) (*models.Response, error)
	Save(ctx context.Context, response *models.Response) error
	Archive(ctx context.Context, archived *models.ArchivedResponse) error
	ListByAttempt(ctx context.Context, candidateID, testID uint, attemptNumber int) ([]*models.Response, error)
	CountArchivedForQuestion(ctx context.Context, candidateID, testID, questionID uint, attemptNumber int) (int64, error)
}

type ReportRepository interface {
	Upsert(ctx context.Context, report *models.ScoreReport) error
	Get(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error)
	GetLatest(ctx context.Context, candidateID, testID uint) (*models.ScoreReport, error)
}

type ProctoringRepository interface {
	CreateEvent(ctx context.Context, event *models.ProctoringEvent) error
	ListBySession(ctx context.Context, sessionID uint) ([]*models.ProctoringEvent, error)
}

// IsNotFoundError reports whether err is the storage-level missing-row error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsConflictError reports whether err is a unique-constraint violation.
// Callers retry-and-reread once instead of overwriting blindly.
func IsConflictError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
