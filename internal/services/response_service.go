package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
)

// ResponseService persists a candidate's answers during a live attempt.
// Answers are stored as literal option values; every overwrite archives the
// superseded row in the same transaction.
type ResponseService interface {
	Record(ctx context.Context, req *RecordResponseRequest) error
}

type responseService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewResponseService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) ResponseService {
	return &responseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *responseService) Record(ctx context.Context, req *RecordResponseRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.repo.Sessions().GetByAttempt(ctx, req.CandidateID, req.TestID, req.AttemptNumber)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session.Completed {
		return ErrSessionClosed
	}

	submission := AnswerSubmission{
		QuestionID:      req.QuestionID,
		Answer:          req.Answer,
		TimeSpent:       req.TimeSpent,
		MarkedForReview: req.MarkedForReview,
	}

	now := time.Now()
	save := func() error {
		return s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
			return recordAnswer(ctx, tx, session, submission, now)
		})
	}

	if err := save(); err != nil {
		// Two writers raced past each other's reads; one retry settles on the
		// surviving row.
		if !repositories.IsConflictError(err) {
			return err
		}
		s.logger.Warn("Retrying response write after conflict",
			"candidate_id", req.CandidateID,
			"question_id", req.QuestionID)
		if err := save(); err != nil {
			if repositories.IsConflictError(err) {
				return ErrStorageConflict
			}
			return err
		}
	}
	return nil
}

// recordAnswer writes one answer inside the caller's transaction. The prior
// row, when present, is archived first so the audit trail gains exactly one
// entry per overwrite.
func recordAnswer(ctx context.Context, tx repositories.Repository, session *models.ExamSession, sub AnswerSubmission, now time.Time) error {
	question, err := tx.Questions().GetByID(ctx, sub.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to load question: %w", err)
	}

	candidateID := session.Assignment.CandidateID
	testID := session.Assignment.TestID

	response := &models.Response{
		CandidateID:     candidateID,
		TestID:          testID,
		QuestionID:      question.ID,
		AttemptNumber:   session.AttemptNumber,
		Answer:          question.ResolveAnswer(sub.Answer),
		TimeSpent:       sub.TimeSpent,
		MarkedForReview: sub.MarkedForReview,
		AnsweredAt:      now,
	}

	prior, err := tx.Responses().Get(ctx, candidateID, testID, question.ID, session.AttemptNumber)
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to read prior response: %w", err)
	}
	if prior != nil {
		if err := tx.Responses().Archive(ctx, models.ArchiveOf(prior, now)); err != nil {
			return fmt.Errorf("failed to archive response: %w", err)
		}
		response.RevisitCount = prior.RevisitCount + 1
	}

	if err := tx.Responses().Save(ctx, response); err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}
