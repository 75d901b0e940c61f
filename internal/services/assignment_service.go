package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dejoyjm/shreds-platform/internal/cache"
	"github.com/dejoyjm/shreds-platform/internal/events"
	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
)

// AssignmentService gates entry into a test: validity window, attempt quota,
// and the creation of the session itself.
type AssignmentService interface {
	// StartSession opens a new attempt, or re-enters the latest open one when
	// the candidate reconnects instead of resuming.
	StartSession(ctx context.Context, req *StartSessionRequest) (*SectionView, error)
}

type assignmentService struct {
	sectionViewer
	validator *utils.Validator
	publisher events.EventPublisher
	timing    cache.LiveTiming
}

func NewAssignmentService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	timing cache.LiveTiming,
) AssignmentService {
	return &assignmentService{
		sectionViewer: sectionViewer{repo: repo, logger: logger},
		validator:     validator,
		publisher:     publisher,
		timing:        timing,
	}
}

func (s *assignmentService) StartSession(ctx context.Context, req *StartSessionRequest) (*SectionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	assignment, err := s.repo.Assignments().GetByCandidateAndTest(ctx, req.CandidateID, req.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}

	now := time.Now()
	if now.Before(assignment.ValidFrom) {
		return nil, ErrNotYetOpen
	}
	if assignment.ValidTo != nil && now.After(*assignment.ValidTo) {
		return nil, ErrWindowClosed
	}

	// A dangling open session means the client crashed or navigated away;
	// starting again lands back in it rather than burning an attempt.
	if open, err := s.repo.Sessions().GetOpenSession(ctx, req.CandidateID, req.TestID); err == nil {
		return s.reenter(ctx, open, now)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check open sessions: %w", err)
	}

	used, err := s.repo.Sessions().CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if int(used) >= assignment.MaxAttempts {
		return nil, ErrAttemptsExhausted
	}

	sections, err := s.repo.Tests().GetSections(ctx, assignment.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	if len(sections) == 0 {
		return nil, ErrTestNotFound
	}
	first := sections[0]

	session := &models.ExamSession{
		AssignmentID:  assignment.ID,
		AttemptNumber: int(used) + 1,
		StartedAt:     now,
	}

	var opened *models.SectionStatus
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Sessions().Create(ctx, session); err != nil {
			return err
		}
		if err := tx.Sessions().SetCurrentSection(ctx, session.ID, first.ID, now); err != nil {
			return err
		}
		opened, err = tx.Sessions().OpenSectionStatus(ctx, session.ID, first.ID, now)
		return err
	})
	if err != nil {
		// Two starts raced on the same attempt number; the winner's session
		// is the one to enter.
		if repositories.IsConflictError(err) {
			open, lookupErr := s.repo.Sessions().GetOpenSession(ctx, req.CandidateID, req.TestID)
			if lookupErr != nil {
				return nil, ErrStorageConflict
			}
			return s.reenter(ctx, open, now)
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Assignment = *assignment
	session.CurrentSectionID = &first.ID
	session.SectionStartedAt = &now

	s.logger.Info("Session started",
		"session_id", session.ID,
		"candidate_id", assignment.CandidateID,
		"test_id", assignment.TestID,
		"attempt_number", session.AttemptNumber)

	s.publishStarted(ctx, session, assignment, now)
	publishTiming(ctx, s.timing, s.logger, session, opened)

	return s.buildSectionView(ctx, session, opened, StatusOK, now)
}

// reenter rebuilds the view of an already-open session without touching its
// timing. Lapsed windows are settled by the resume path, not here.
func (s *assignmentService) reenter(ctx context.Context, session *models.ExamSession, now time.Time) (*SectionView, error) {
	if session.CurrentSectionID == nil {
		return nil, ErrNoCurrentSection
	}
	status, err := s.repo.Sessions().GetSectionStatus(ctx, session.ID, *session.CurrentSectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load section status: %w", err)
	}
	s.logger.Info("Re-entering open session",
		"session_id", session.ID,
		"attempt_number", session.AttemptNumber)
	return s.buildSectionView(ctx, session, status, StatusOK, now)
}

func (s *assignmentService) publishStarted(ctx context.Context, session *models.ExamSession, assignment *models.TestAssignment, now time.Time) {
	if s.publisher == nil {
		return
	}
	event := events.NewExamEvent(watermill.NewUUID(), events.EventSessionStarted, &events.SessionStartedEvent{
		SessionID:     session.ID,
		CandidateID:   assignment.CandidateID,
		TestID:        assignment.TestID,
		TestName:      assignment.Test.Name,
		AttemptNumber: session.AttemptNumber,
		StartedAt:     now,
	})
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish session start event",
			"session_id", session.ID, "error", err)
	}
}
