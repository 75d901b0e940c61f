package models

import "time"

// Response is the live, versioned record of a candidate's answer to one
// question in one attempt. Answer always holds the literal option value.
type Response struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	CandidateID     uint      `json:"candidate_id" gorm:"not null;uniqueIndex:idx_response_identity"`
	TestID          uint      `json:"test_id" gorm:"not null;uniqueIndex:idx_response_identity"`
	QuestionID      uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_response_identity"`
	AttemptNumber   int       `json:"attempt_number" gorm:"not null;default:1;uniqueIndex:idx_response_identity"`
	Answer          string    `json:"answer" gorm:"type:text"`
	TimeSpent       int       `json:"time_spent" gorm:"default:0"`
	MarkedForReview bool      `json:"marked_for_review" gorm:"default:false"`
	RevisitCount    int       `json:"revisit_count" gorm:"default:0"`
	AnsweredAt      time.Time `json:"answered_at"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (Response) TableName() string {
	return "responses"
}

// IsAttempted distinguishes an empty submission from a wrong one.
func (r *Response) IsAttempted() bool {
	return r.Answer != ""
}

// ArchivedResponse is the append-only audit copy of a superseded answer.
// Rows are created exactly once per overwrite and never updated.
type ArchivedResponse struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	CandidateID     uint      `json:"candidate_id" gorm:"not null;index"`
	TestID          uint      `json:"test_id" gorm:"not null;index"`
	QuestionID      uint      `json:"question_id" gorm:"not null;index"`
	AttemptNumber   int       `json:"attempt_number" gorm:"not null;default:1"`
	Answer          string    `json:"answer" gorm:"type:text"`
	TimeSpent       int       `json:"time_spent" gorm:"default:0"`
	MarkedForReview bool      `json:"marked_for_review" gorm:"default:false"`
	RevisitCount    int       `json:"revisit_count" gorm:"default:0"`
	AnsweredAt      time.Time `json:"answered_at"`
	ArchivedAt      time.Time `json:"archived_at"`
}

func (ArchivedResponse) TableName() string {
	return "archived_responses"
}

// ArchiveOf snapshots a live response verbatim for the audit trail.
func ArchiveOf(r *Response, archivedAt time.Time) *ArchivedResponse {
	return &ArchivedResponse{
		CandidateID:     r.CandidateID,
		TestID:          r.TestID,
		QuestionID:      r.QuestionID,
		AttemptNumber:   r.AttemptNumber,
		Answer:          r.Answer,
		TimeSpent:       r.TimeSpent,
		MarkedForReview: r.MarkedForReview,
		RevisitCount:    r.RevisitCount,
		AnsweredAt:      r.AnsweredAt,
		ArchivedAt:      archivedAt,
	}
}
