package postgres

import (
	"context"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("Category").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Preload("Category").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByCategoryAndDifficulty(ctx context.Context, categoryID uint, difficulty models.DifficultyLevel) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ? AND difficulty = ?", categoryID, difficulty).
		Count(&count).Error
	return count, err
}
