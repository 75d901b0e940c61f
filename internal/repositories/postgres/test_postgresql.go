package postgres

import (
	"context"
	"errors"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).
		Preload("Sections").
		Preload("Sections.Category").
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetSections(ctx context.Context, testID uint) ([]*models.TestSection, error) {
	var sections []*models.TestSection
	if err := t.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Preload("Category").
		Order("id ASC").
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (t *TestPostgreSQL) GetSectionByID(ctx context.Context, id uint) (*models.TestSection, error) {
	var section models.TestSection
	if err := t.db.WithContext(ctx).
		Preload("Category").
		First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (t *TestPostgreSQL) NextSection(ctx context.Context, testID, afterSectionID uint) (*models.TestSection, error) {
	var section models.TestSection
	err := t.db.WithContext(ctx).
		Where("test_id = ? AND id > ?", testID, afterSectionID).
		Preload("Category").
		Order("id ASC").
		First(&section).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &section, nil
}

func (t *TestPostgreSQL) GetQuestionSet(ctx context.Context, testID uint) ([]*models.Question, error) {
	var rows []*models.TestQuestionSet
	if err := t.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Preload("Question").
		Preload("Question.Category").
		Order("display_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	questions := make([]*models.Question, len(rows))
	for i, row := range rows {
		q := row.Question
		questions[i] = &q
	}
	return questions, nil
}

func (t *TestPostgreSQL) CountQuestionSet(ctx context.Context, testID uint) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&models.TestQuestionSet{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	return count, err
}
