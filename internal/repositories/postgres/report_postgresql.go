package postgres

import (
	"context"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportPostgreSQL struct {
	db *gorm.DB
}

// Upsert overwrites any prior computation for the same attempt in place.
// The uniqueness constraint serializes concurrent recomputations.
func (r *ReportPostgreSQL) Upsert(ctx context.Context, report *models.ScoreReport) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "candidate_id"}, {Name: "test_id"}, {Name: "attempt_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "max_score", "total_positive", "total_negative",
				"total_correct", "total_wrong", "total_unattempted", "updated_at",
			}),
		}).
		Create(report).Error
}

func (r *ReportPostgreSQL) Get(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error) {
	var report models.ScoreReport
	if err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ? AND attempt_number = ?",
			candidateID, testID, attemptNumber).
		First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportPostgreSQL) GetLatest(ctx context.Context, candidateID, testID uint) (*models.ScoreReport, error) {
	var report models.ScoreReport
	if err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ?", candidateID, testID).
		Order("attempt_number DESC").
		First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

type ProctoringPostgreSQL struct {
	db *gorm.DB
}

func (p *ProctoringPostgreSQL) CreateEvent(ctx context.Context, event *models.ProctoringEvent) error {
	return p.db.WithContext(ctx).Create(event).Error
}

func (p *ProctoringPostgreSQL) ListBySession(ctx context.Context, sessionID uint) ([]*models.ProctoringEvent, error) {
	var events []*models.ProctoringEvent
	if err := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
