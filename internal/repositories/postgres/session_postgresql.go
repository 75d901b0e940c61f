package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.ExamSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.sessionQuery(ctx).First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByAttempt(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.sessionQuery(ctx).
		Joins("JOIN test_assignments ON test_assignments.id = exam_sessions.assignment_id").
		Where("test_assignments.candidate_id = ? AND test_assignments.test_id = ? AND exam_sessions.attempt_number = ?",
			candidateID, testID, attemptNumber).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetOpenSession(ctx context.Context, candidateID, testID uint) (*models.ExamSession, error) {
	var session models.ExamSession
	if err := s.sessionQuery(ctx).
		Joins("JOIN test_assignments ON test_assignments.id = exam_sessions.assignment_id").
		Where("test_assignments.candidate_id = ? AND test_assignments.test_id = ? AND exam_sessions.completed = false",
			candidateID, testID).
		Order("exam_sessions.attempt_number DESC").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionPostgreSQL) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count, err
}

func (s *SessionPostgreSQL) SetCurrentSection(ctx context.Context, sessionID, sectionID uint, startedAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"current_section_id": sectionID,
			"section_started_at": startedAt,
		}).Error
}

func (s *SessionPostgreSQL) MarkCompleted(ctx context.Context, sessionID uint, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		}).Error
}

func (s *SessionPostgreSQL) GetSectionStatus(ctx context.Context, sessionID, sectionID uint) (*models.SectionStatus, error) {
	var status models.SectionStatus
	if err := s.db.WithContext(ctx).
		Where("session_id = ? AND section_id = ?", sessionID, sectionID).
		Preload("Section").
		Preload("Section.Category").
		First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *SessionPostgreSQL) OpenSectionStatus(ctx context.Context, sessionID, sectionID uint, startedAt time.Time) (*models.SectionStatus, error) {
	status, err := s.GetSectionStatus(ctx, sessionID, sectionID)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.SectionStatus{
		SessionID: sessionID,
		SectionID: sectionID,
		StartedAt: startedAt,
	}
	if err := s.db.WithContext(ctx).Create(created).Error; err != nil {
		// Lost a race against a concurrent opener; the surviving row wins.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.GetSectionStatus(ctx, sessionID, sectionID)
		}
		return nil, err
	}
	return s.GetSectionStatus(ctx, sessionID, sectionID)
}

func (s *SessionPostgreSQL) CompleteSection(ctx context.Context, statusID uint, submittedAt time.Time, autoSubmitted bool) error {
	return s.db.WithContext(ctx).
		Model(&models.SectionStatus{}).
		Where("id = ?", statusID).
		Updates(map[string]interface{}{
			"is_completed":   true,
			"auto_submitted": autoSubmitted,
			"submitted_at":   submittedAt,
		}).Error
}

func (s *SessionPostgreSQL) CompletedSectionIDs(ctx context.Context, sessionID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.SectionStatus{}).
		Where("session_id = ? AND is_completed = true", sessionID).
		Pluck("section_id", &ids).Error
	return ids, err
}

func (s *SessionPostgreSQL) GetQuestionOrder(ctx context.Context, sessionID, sectionID uint) ([]*models.SectionQuestionOrder, error) {
	var rows []*models.SectionQuestionOrder
	if err := s.db.WithContext(ctx).
		Where("session_id = ? AND section_id = ?", sessionID, sectionID).
		Preload("Question").
		Preload("Question.Category").
		Order("display_order ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SessionPostgreSQL) SaveQuestionOrder(ctx context.Context, rows []*models.SectionQuestionOrder) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

func (s *SessionPostgreSQL) sessionQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Candidate").
		Preload("Assignment.Test").
		Preload("CurrentSection").
		Preload("CurrentSection.Category")
}
