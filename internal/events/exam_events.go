package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents different types of exam lifecycle events
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "exam.session_started"
	EventSectionSubmitted EventType = "exam.section_submitted"
	EventSessionCompleted EventType = "exam.session_completed"

	// Scoring events
	EventScoreComputed EventType = "exam.score_computed"

	// Proctoring events
	EventProctoringAlert EventType = "exam.proctoring_alert"
)

// ExamEvent is the base event structure for all exam lifecycle events
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Session event payloads

type SessionStartedEvent struct {
	SessionID     uint      `json:"session_id"`
	CandidateID   uint      `json:"candidate_id"`
	TestID        uint      `json:"test_id"`
	TestName      string    `json:"test_name"`
	AttemptNumber int       `json:"attempt_number"`
	StartedAt     time.Time `json:"started_at"`
}

type SectionSubmittedEvent struct {
	SessionID     uint      `json:"session_id"`
	CandidateID   uint      `json:"candidate_id"`
	TestID        uint      `json:"test_id"`
	AttemptNumber int       `json:"attempt_number"`
	SectionID     uint      `json:"section_id"`
	SectionName   string    `json:"section_name"`
	AutoSubmitted bool      `json:"auto_submitted"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type SessionCompletedEvent struct {
	SessionID     uint      `json:"session_id"`
	CandidateID   uint      `json:"candidate_id"`
	TestID        uint      `json:"test_id"`
	AttemptNumber int       `json:"attempt_number"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Scoring event payloads

type ScoreComputedEvent struct {
	CandidateID   uint            `json:"candidate_id"`
	TestID        uint            `json:"test_id"`
	AttemptNumber int             `json:"attempt_number"`
	Score         decimal.Decimal `json:"score"`
	MaxScore      decimal.Decimal `json:"max_score"`
	Percentage    decimal.Decimal `json:"percentage"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// Proctoring event payloads

type ProctoringAlertEvent struct {
	SessionID     uint      `json:"session_id"`
	CandidateID   uint      `json:"candidate_id"`
	AttemptNumber int       `json:"attempt_number"`
	AlertType     string    `json:"alert_type"`
	Severity      int       `json:"severity"`
	ObservedAt    time.Time `json:"observed_at"`
}

// NewExamEvent wraps a payload with the standard envelope.
func NewExamEvent(id string, eventType EventType, data interface{}) *ExamEvent {
	return &ExamEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "shreds-platform",
		Version:   "1.0",
		Data:      data,
	}
}
