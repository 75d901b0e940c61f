package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type DifficultyLevel string

const (
	DifficultyEasy     DifficultyLevel = "easy"
	DifficultyModerate DifficultyLevel = "moderate"
	DifficultyHard     DifficultyLevel = "hard"
)

const QuestionTypeMCQ = "MCQ"

type QuestionCategory struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,max=100"`
}

func (QuestionCategory) TableName() string {
	return "question_categories"
}

// Question is an immutable catalog entry. Options is an ordered list of
// literal choice values; CorrectAnswer always holds a literal value, never a
// positional label.
type Question struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	CategoryID uint             `json:"category_id" gorm:"not null;index"`
	Text       string           `json:"text" gorm:"type:text;not null" validate:"required"`
	Difficulty DifficultyLevel  `json:"difficulty" gorm:"not null;size:10;index" validate:"required,difficulty_level"`
	Type       string           `json:"question_type" gorm:"column:question_type;default:MCQ;size:50"`
	Options    datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`

	CorrectAnswer string          `json:"correct_answer" gorm:"type:text"`
	PositiveMarks decimal.Decimal `json:"positive_marks" gorm:"type:numeric(8,2);default:1.0"`
	NegativeMarks decimal.Decimal `json:"negative_marks" gorm:"type:numeric(8,2);default:0.0"`

	CreatedAt time.Time `json:"created_at"`

	Category QuestionCategory `json:"category" gorm:"foreignKey:CategoryID"`
}

func (Question) TableName() string {
	return "questions"
}

// ResolveAnswer maps a positional choice label ("A".."Z") to the literal
// option value so stored answers survive label-scheme changes. Anything that
// is not a recognizable label for this question is returned unchanged.
func (q *Question) ResolveAnswer(answer string) string {
	if q.Type != QuestionTypeMCQ || len(q.Options) == 0 {
		return answer
	}
	label := strings.TrimSpace(answer)
	if len(label) != 1 {
		return answer
	}
	idx := int(label[0] - 'A')
	if idx < 0 || idx >= len(q.Options) {
		return answer
	}
	return q.Options[idx]
}

// ChoiceLabel is the inverse mapping, used by audit exports. Returns "" when
// the value is not one of the options.
func (q *Question) ChoiceLabel(value string) string {
	for i, opt := range q.Options {
		if opt == value {
			return string(rune('A' + i))
		}
	}
	return ""
}
