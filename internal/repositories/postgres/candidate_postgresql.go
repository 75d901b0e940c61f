package postgres

import (
	"context"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
)

type CandidatePostgreSQL struct {
	db *gorm.DB
}

func (c *CandidatePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := c.db.WithContext(ctx).First(&candidate, id).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (c *CandidatePostgreSQL) FindBySecrets(ctx context.Context, email, phone, secret1, secret2 string) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := c.db.WithContext(ctx).
		Where("email = ? AND phone = ? AND secret_code1 = ? AND secret_code2 = ?",
			email, phone, secret1, secret2).
		First(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

type AssignmentPostgreSQL struct {
	db *gorm.DB
}

func (a *AssignmentPostgreSQL) GetByCandidateAndTest(ctx context.Context, candidateID, testID uint) (*models.TestAssignment, error) {
	var assignment models.TestAssignment
	if err := a.db.WithContext(ctx).
		Where("candidate_id = ? AND test_id = ?", candidateID, testID).
		Preload("Candidate").
		Preload("Test").
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (a *AssignmentPostgreSQL) ListByCandidate(ctx context.Context, candidateID uint) ([]*models.TestAssignment, error) {
	var assignments []*models.TestAssignment
	if err := a.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Preload("Test").
		Order("valid_from ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}
