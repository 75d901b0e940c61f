package models

import "time"

// ExamSession tracks one candidate's one attempt through the ordered,
// timed sections of a test. Once Completed flips to true the session is
// immutable.
type ExamSession struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	AssignmentID     uint       `json:"assignment_id" gorm:"not null;uniqueIndex:idx_session_assignment_attempt"`
	AttemptNumber    int        `json:"attempt_number" gorm:"not null;default:1;uniqueIndex:idx_session_assignment_attempt"`
	StartedAt        time.Time  `json:"started_at"`
	Completed        bool       `json:"completed" gorm:"default:false;index"`
	CurrentSectionID *uint      `json:"current_section_id"`
	SectionStartedAt *time.Time `json:"section_started_at"`
	CompletedAt      *time.Time `json:"completed_at"`

	Assignment     TestAssignment `json:"assignment" gorm:"foreignKey:AssignmentID"`
	CurrentSection *TestSection   `json:"current_section" gorm:"foreignKey:CurrentSectionID"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// SectionStatus records timing and completion for one section of one session.
// IsCompleted is monotonic; AutoSubmitted marks timeout-driven completion.
type SectionStatus struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	SessionID     uint       `json:"session_id" gorm:"not null;uniqueIndex:idx_status_session_section"`
	SectionID     uint       `json:"section_id" gorm:"not null;uniqueIndex:idx_status_session_section"`
	StartedAt     time.Time  `json:"started_at"`
	SubmittedAt   *time.Time `json:"submitted_at"`
	IsCompleted   bool       `json:"is_completed" gorm:"default:false"`
	AutoSubmitted bool       `json:"auto_submitted" gorm:"default:false"`

	Section TestSection `json:"section" gorm:"foreignKey:SectionID"`
}

func (SectionStatus) TableName() string {
	return "section_statuses"
}

// Deadline is the theoretical end of the section window. Auto-submission is
// always recorded at this instant, not at discovery time.
func (s *SectionStatus) Deadline() time.Time {
	return s.StartedAt.Add(time.Duration(s.Section.EffectiveDuration()) * time.Minute)
}

// SectionQuestionOrder persists the one-time randomized permutation of a
// section's questions for a session. Resume never re-shuffles.
type SectionQuestionOrder struct {
	ID           uint `json:"id" gorm:"primaryKey"`
	SessionID    uint `json:"session_id" gorm:"not null;uniqueIndex:idx_order_session_section_question"`
	SectionID    uint `json:"section_id" gorm:"not null;uniqueIndex:idx_order_session_section_question"`
	QuestionID   uint `json:"question_id" gorm:"not null;uniqueIndex:idx_order_session_section_question"`
	DisplayOrder int  `json:"display_order" gorm:"not null"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (SectionQuestionOrder) TableName() string {
	return "section_question_orders"
}
