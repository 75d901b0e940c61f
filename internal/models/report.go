package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreReport is the persisted outcome of one scoring run. Recomputation
// overwrites the row in place; the computation itself is idempotent, so last
// writer wins is safe.
type ScoreReport struct {
	ID            uint `json:"id" gorm:"primaryKey"`
	CandidateID   uint `json:"candidate_id" gorm:"not null;uniqueIndex:idx_report_identity"`
	TestID        uint `json:"test_id" gorm:"not null;uniqueIndex:idx_report_identity"`
	AttemptNumber int  `json:"attempt_number" gorm:"not null;default:1;uniqueIndex:idx_report_identity"`

	Score         decimal.Decimal `json:"score" gorm:"type:numeric(8,2)"`
	MaxScore      decimal.Decimal `json:"max_score" gorm:"type:numeric(8,2)"`
	TotalPositive decimal.Decimal `json:"total_positive" gorm:"type:numeric(8,2)"`
	TotalNegative decimal.Decimal `json:"total_negative" gorm:"type:numeric(8,2)"`

	TotalCorrect     int `json:"total_correct" gorm:"default:0"`
	TotalWrong       int `json:"total_wrong" gorm:"default:0"`
	TotalUnattempted int `json:"total_unattempted" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ScoreReport) TableName() string {
	return "score_reports"
}

// Percentage is the display percentage, rounded to two decimal places.
// Defined as zero when the maximum is zero.
func (r *ScoreReport) Percentage() decimal.Decimal {
	return PercentageOf(r.Score, r.MaxScore)
}

func PercentageOf(score, max decimal.Decimal) decimal.Decimal {
	if max.IsZero() {
		return decimal.Zero
	}
	return score.Div(max).Mul(decimal.NewFromInt(100)).Round(2)
}
