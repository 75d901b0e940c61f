package models

import "time"

type Candidate struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:255" validate:"required,max=255"`
	Email       string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Phone       string `json:"phone" gorm:"size:20"`
	SecretCode1 string `json:"-" gorm:"size:50"`
	SecretCode2 string `json:"-" gorm:"size:50"`
}

func (Candidate) TableName() string {
	return "candidates"
}

// TestAssignment binds a candidate to a test with a validity window and an
// attempt quota. One assignment per (candidate, test).
type TestAssignment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CandidateID uint       `json:"candidate_id" gorm:"not null;uniqueIndex:idx_assignment_candidate_test"`
	TestID      uint       `json:"test_id" gorm:"not null;uniqueIndex:idx_assignment_candidate_test"`
	ValidFrom   time.Time  `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to"`
	MaxAttempts int        `json:"max_attempts" gorm:"default:1" validate:"min=1"`

	Candidate Candidate `json:"candidate" gorm:"foreignKey:CandidateID"`
	Test      Test      `json:"test" gorm:"foreignKey:TestID"`
}

func (TestAssignment) TableName() string {
	return "test_assignments"
}
