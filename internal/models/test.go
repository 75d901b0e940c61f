package models

import "time"

type Test struct {
	ID                   uint   `json:"id" gorm:"primaryKey"`
	Name                 string `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	TotalDurationMinutes int    `json:"total_duration_minutes" gorm:"not null" validate:"required,min=5"`
	EnforceSectionTime   bool   `json:"enforce_section_time" gorm:"default:false"`
	ShowSectionGuidance  bool   `json:"show_section_time_guidance" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`

	Sections []TestSection `json:"sections" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

// TestSection is one timed, category-scoped slice of a test blueprint.
// Sections run in ascending ID order.
type TestSection struct {
	ID                uint `json:"id" gorm:"primaryKey"`
	TestID            uint `json:"test_id" gorm:"not null;index"`
	CategoryID        uint `json:"category_id" gorm:"not null;index"`
	EasyQuestions     int  `json:"easy_questions" gorm:"default:0" validate:"min=0"`
	ModerateQuestions int  `json:"moderate_questions" gorm:"default:0" validate:"min=0"`
	HardQuestions     int  `json:"hard_questions" gorm:"default:0" validate:"min=0"`
	DurationMinutes   int  `json:"section_duration_minutes" gorm:"column:section_duration_minutes;default:10"`

	Category QuestionCategory `json:"category" gorm:"foreignKey:CategoryID"`
}

func (TestSection) TableName() string {
	return "test_sections"
}

func (s *TestSection) TotalQuestions() int {
	return s.EasyQuestions + s.ModerateQuestions + s.HardQuestions
}

// EffectiveDuration derives the duration when the blueprint left it unset:
// one minute per question, never below five minutes.
func (s *TestSection) EffectiveDuration() int {
	if s.DurationMinutes > 0 {
		return s.DurationMinutes
	}
	total := s.TotalQuestions()
	if total < 5 {
		return 5
	}
	return total
}

// TestQuestionSet is the materialized, ordered question list frozen for a
// test configuration. It is consumed read-only during a run.
type TestQuestionSet struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	TestID     uint `json:"test_id" gorm:"not null;index"`
	QuestionID uint `json:"question_id" gorm:"not null;index"`
	Order      int  `json:"order" gorm:"column:display_order;default:0"`

	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (TestQuestionSet) TableName() string {
	return "test_question_sets"
}
