package services

import (
	"context"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/shopspring/decimal"
)

// ===== REQUESTS =====

type StartSessionRequest struct {
	CandidateID uint `json:"candidate" validate:"required"`
	TestID      uint `json:"test" validate:"required"`
}

type ResumeRequest struct {
	CandidateID   uint `json:"candidate" validate:"required"`
	TestID        uint `json:"test" validate:"required"`
	AttemptNumber int  `json:"attempt_number" validate:"required,min=1"`
}

type AnswerSubmission struct {
	QuestionID      uint   `json:"question" validate:"required"`
	Answer          string `json:"answer"`
	TimeSpent       int    `json:"time_spent" validate:"min=0"`
	MarkedForReview bool   `json:"marked_for_review"`
}

type SubmitSectionRequest struct {
	CandidateID   uint               `json:"candidate" validate:"required"`
	TestID        uint               `json:"test" validate:"required"`
	AttemptNumber int                `json:"attempt_number" validate:"required,min=1"`
	SectionID     uint               `json:"section_id" validate:"required"`
	Responses     []AnswerSubmission `json:"responses" validate:"dive"`
	// Explicit marks the section completed and advances in the same atomic
	// step. Auto flags the completion as timeout-driven.
	Explicit bool `json:"section_complete"`
	Auto     bool `json:"auto"`
}

type RecordResponseRequest struct {
	CandidateID     uint   `json:"candidate" validate:"required"`
	TestID          uint   `json:"test" validate:"required"`
	QuestionID      uint   `json:"question" validate:"required"`
	AttemptNumber   int    `json:"attempt_number" validate:"required,min=1"`
	Answer          string `json:"answer"`
	TimeSpent       int    `json:"time_spent" validate:"min=0"`
	MarkedForReview bool   `json:"marked_for_review"`
}

type VerifySecretsRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"mobile" validate:"required"`
	Secret1 string `json:"secret1" validate:"required"`
	Secret2 string `json:"secret2" validate:"required"`
}

// ===== VIEWS =====

type QuestionView struct {
	ID         uint                   `json:"id"`
	Text       string                 `json:"text"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
	Type       string                 `json:"question_type"`
	Options    []string               `json:"options"`
}

// SectionView is what a connected client needs to render the current
// section: timing, ordering, and the questions in their frozen display order.
type SectionView struct {
	Status          string         `json:"status"`
	SessionID       uint           `json:"session_id"`
	CandidateID     uint           `json:"candidate_id"`
	TestID          uint           `json:"test_id"`
	AttemptNumber   int            `json:"attempt_number"`
	SectionID       uint           `json:"section_id"`
	SectionName     string         `json:"section_name"`
	SectionStartAt  time.Time      `json:"section_start_time"`
	DurationMinutes int            `json:"section_duration_minutes"`
	TimeLeftSeconds int            `json:"time_left_seconds"`
	Questions       []QuestionView `json:"questions"`
}

type SessionView struct {
	SessionID      uint       `json:"session_id"`
	CandidateID    uint       `json:"candidate_id"`
	TestID         uint       `json:"test_id"`
	TestName       string     `json:"test_name"`
	AttemptNumber  int        `json:"attempt_number"`
	SectionID      *uint      `json:"section_id"`
	SectionName    string     `json:"section_name,omitempty"`
	SectionStartAt *time.Time `json:"section_start_time"`
}

type SectionBreakdown struct {
	SectionID   uint            `json:"section_id"`
	SectionName string          `json:"section_name"`
	Score       decimal.Decimal `json:"score"`
	MaxScore    decimal.Decimal `json:"max_score"`
	Percentage  decimal.Decimal `json:"percentage"`
	Correct     int             `json:"correct"`
	Wrong       int             `json:"wrong"`
	Unattempted int             `json:"unattempted"`
}

type CategoryBreakdown struct {
	Category    string          `json:"category"`
	Score       decimal.Decimal `json:"score"`
	MaxScore    decimal.Decimal `json:"max_score"`
	Percentage  decimal.Decimal `json:"percentage"`
	Correct     int             `json:"correct"`
	Wrong       int             `json:"wrong"`
	Unattempted int             `json:"unattempted"`
}

// AuditRow is one question's evaluation detail for the report renderer.
type AuditRow struct {
	SectionName        string          `json:"section"`
	Category           string          `json:"category"`
	QuestionID         uint            `json:"question_id"`
	QuestionText       string          `json:"question"`
	AnswerRaw          string          `json:"answer_raw"`
	AnswerChoice       string          `json:"answer_choice"`
	CorrectRaw         string          `json:"correct_raw"`
	CorrectChoice      string          `json:"correct_choice"`
	Evaluation         string          `json:"evaluation"`
	MarksAwarded       decimal.Decimal `json:"marks_awarded"`
	PositiveMarks      decimal.Decimal `json:"positive_marks"`
	NegativeMarks      decimal.Decimal `json:"negative_marks"`
}

// ScoreReportData is the full structure handed to the external report
// renderer, read-only.
type ScoreReportData struct {
	CandidateID   uint            `json:"candidate_id"`
	CandidateName string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	TestID        uint            `json:"test_id"`
	TestName      string          `json:"test_name"`
	AttemptNumber int             `json:"attempt_number"`
	Score         decimal.Decimal `json:"score"`
	MaxScore      decimal.Decimal `json:"max_score"`
	Percentage    decimal.Decimal `json:"percentage"`
	TotalCorrect  int             `json:"total_correct"`
	TotalWrong    int             `json:"total_wrong"`
	TotalUnattempted int          `json:"total_unattempted"`

	Sections   []SectionBreakdown  `json:"section_summary"`
	Categories []CategoryBreakdown `json:"category_summary"`
	Audit      []AuditRow          `json:"audit"`
}

type AssignmentView struct {
	AssignmentID   uint             `json:"assignment_id"`
	TestID         uint             `json:"test_id"`
	TestName       string           `json:"test_name"`
	ValidFrom      time.Time        `json:"valid_from"`
	ValidTo        *time.Time       `json:"valid_to"`
	AttemptsUsed   int              `json:"attempts_used"`
	MaxAttempts    int              `json:"max_attempts"`
	CanStart       bool             `json:"can_start"`
	Status         string           `json:"status"`
	Sections       []SectionSummary `json:"sections"`
	TotalQuestions int              `json:"total_questions"`
}

type SectionSummary struct {
	SectionID       uint   `json:"section_id"`
	SectionName     string `json:"section_name"`
	DurationMinutes int    `json:"duration_minutes"`
}

type CandidateAssignments struct {
	CandidateID uint             `json:"candidate_id"`
	Assignments []AssignmentView `json:"assignments"`
}

// ReportRenderer is the narrow interface to the external report collaborator.
// Rendering is best-effort; callers log failures and move on.
type ReportRenderer interface {
	Render(ctx context.Context, data *ScoreReportData) (string, error)
}
