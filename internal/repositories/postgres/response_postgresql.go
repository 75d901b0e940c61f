package postgres

import (
	"context"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func (r *ResponsePostgreSQL) Get(ctx context.Context, candidateID, testID, questionID uint, attemptNumber int) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ? AND question_id = ? AND attempt_number = ?",
			candidateID, testID, questionID, attemptNumber).
		First(&response).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

// Save upserts on the (candidate, test, question, attempt) identity. Archival
// of the prior row is the caller's responsibility, inside the same
// transaction.
func (r *ResponsePostgreSQL) Save(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "candidate_id"}, {Name: "test_id"},
				{Name: "question_id"}, {Name: "attempt_number"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"answer", "time_spent", "marked_for_review", "revisit_count", "answered_at",
			}),
		}).
		Create(response).Error
}

func (r *ResponsePostgreSQL) Archive(ctx context.Context, archived *models.ArchivedResponse) error {
	return r.db.WithContext(ctx).Create(archived).Error
}

func (r *ResponsePostgreSQL) ListByAttempt(ctx context.Context, candidateID, testID uint, attemptNumber int) ([]*models.Response, error) {
	var responses []*models.Response
	if err := r.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ? AND attempt_number = ?",
			candidateID, testID, attemptNumber).
		Preload("Question").
		Preload("Question.Category").
		Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *ResponsePostgreSQL) CountArchivedForQuestion(ctx context.Context, candidateID, testID, questionID uint, attemptNumber int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ArchivedResponse{}).
		Where("candidate_id = ? AND test_id = ? AND question_id = ? AND attempt_number = ?",
			candidateID, testID, questionID, attemptNumber).
		Count(&count).Error
	return count, err
}
