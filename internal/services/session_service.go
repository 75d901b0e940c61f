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

// SessionService drives a session through its ordered, timed sections.
// Timeouts are evaluated lazily on access; no background timers exist.
type SessionService interface {
	// ResumeOrAdvance settles the session's timing state and returns the
	// section the candidate should see now. At most one section transition
	// happens per call.
	ResumeOrAdvance(ctx context.Context, req *ResumeRequest) (*SectionView, error)

	// SubmitSection records a batch of answers for the current section and,
	// when the submission is explicit or the window has lapsed, completes the
	// section and advances in the same step.
	SubmitSection(ctx context.Context, req *SubmitSectionRequest) (*SectionView, error)

	// SubmitTest closes the whole session regardless of remaining sections
	// and triggers scoring.
	SubmitTest(ctx context.Context, req *ResumeRequest) (*SectionView, error)

	// LookupOpenSession finds the latest uncompleted session for a
	// reconnecting client.
	LookupOpenSession(ctx context.Context, candidateID, testID uint) (*SessionView, error)
}

type sessionService struct {
	sectionViewer
	validator *utils.Validator
	scoring   ScoringService
	publisher events.EventPublisher
	timing    cache.LiveTiming
	renderer  ReportRenderer
}

func NewSessionService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	scoring ScoringService,
	publisher events.EventPublisher,
	timing cache.LiveTiming,
	renderer ReportRenderer,
) SessionService {
	return &sessionService{
		sectionViewer: sectionViewer{repo: repo, logger: logger},
		validator:     validator,
		scoring:       scoring,
		publisher:     publisher,
		timing:        timing,
		renderer:      renderer,
	}
}

func (s *sessionService) ResumeOrAdvance(ctx context.Context, req *ResumeRequest) (*SectionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.loadSession(ctx, req.CandidateID, req.TestID, req.AttemptNumber)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return s.completedView(session), nil
	}
	if session.CurrentSectionID == nil {
		return nil, ErrNoCurrentSection
	}

	status, err := s.repo.Sessions().GetSectionStatus(ctx, session.ID, *session.CurrentSectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load section status: %w", err)
	}

	now := time.Now()

	// Completed sections and lapsed windows both mean the candidate belongs
	// in the next section. A lapsed window is settled first: the section is
	// auto-submitted with its timestamp pinned to the theoretical deadline,
	// never the moment the lapse was noticed.
	switch {
	case status.IsCompleted:
		return s.advance(ctx, session, status, now)
	case now.After(status.Deadline()):
		if err := s.repo.Sessions().CompleteSection(ctx, status.ID, status.Deadline(), true); err != nil {
			return nil, fmt.Errorf("failed to auto-submit section: %w", err)
		}
		s.logger.Info("Section auto-submitted on timeout",
			"session_id", session.ID,
			"section_id", status.SectionID,
			"deadline", status.Deadline())
		s.publishSectionSubmitted(ctx, session, status, true, status.Deadline())
		return s.advance(ctx, session, status, now)
	default:
		return s.buildSectionView(ctx, session, status, StatusOK, now)
	}
}

func (s *sessionService) SubmitSection(ctx context.Context, req *SubmitSectionRequest) (*SectionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.loadSession(ctx, req.CandidateID, req.TestID, req.AttemptNumber)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionClosed
	}
	if session.CurrentSectionID == nil {
		return nil, ErrNoCurrentSection
	}

	if req.SectionID != *session.CurrentSectionID {
		completed, err := s.repo.Sessions().CompletedSectionIDs(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load completed sections: %w", err)
		}
		for _, id := range completed {
			if id == req.SectionID {
				return nil, ErrAlreadySubmitted
			}
		}
		return nil, ErrOutOfOrderSection
	}

	status, err := s.repo.Sessions().GetSectionStatus(ctx, session.ID, req.SectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load section status: %w", err)
	}
	if status.IsCompleted {
		return nil, ErrAlreadySubmitted
	}

	now := time.Now()
	deadline := status.Deadline()
	timedOut := now.After(deadline)

	// Answers arriving with the submission are still honored after the
	// deadline; the grace covers the client flushing its buffer on timeout.
	finishing := req.Explicit || req.Auto || timedOut
	submittedAt := now
	if submittedAt.After(deadline) {
		submittedAt = deadline
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, answer := range req.Responses {
			if err := recordAnswer(ctx, tx, session, answer, now); err != nil {
				return err
			}
		}
		if finishing {
			auto := (req.Auto || timedOut) && !req.Explicit
			return tx.Sessions().CompleteSection(ctx, status.ID, submittedAt, auto)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !finishing {
		return s.buildSectionView(ctx, session, status, StatusSaved, now)
	}

	s.publishSectionSubmitted(ctx, session, status, req.Auto || timedOut, submittedAt)
	view, err := s.advance(ctx, session, status, now)
	if err != nil {
		return nil, err
	}
	if view.Status == StatusOK {
		view.Status = StatusSectionSaved
	}
	return view, nil
}

func (s *sessionService) SubmitTest(ctx context.Context, req *ResumeRequest) (*SectionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.loadSession(ctx, req.CandidateID, req.TestID, req.AttemptNumber)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionClosed
	}

	now := time.Now()
	if session.CurrentSectionID != nil {
		status, err := s.repo.Sessions().GetSectionStatus(ctx, session.ID, *session.CurrentSectionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load section status: %w", err)
		}
		if !status.IsCompleted {
			submittedAt := now
			if submittedAt.After(status.Deadline()) {
				submittedAt = status.Deadline()
			}
			if err := s.repo.Sessions().CompleteSection(ctx, status.ID, submittedAt, false); err != nil {
				return nil, fmt.Errorf("failed to complete section: %w", err)
			}
		}
	}

	return s.finishSession(ctx, session, now)
}

func (s *sessionService) LookupOpenSession(ctx context.Context, candidateID, testID uint) (*SessionView, error) {
	session, err := s.repo.Sessions().GetOpenSession(ctx, candidateID, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	view := &SessionView{
		SessionID:      session.ID,
		CandidateID:    session.Assignment.CandidateID,
		TestID:         session.Assignment.TestID,
		TestName:       session.Assignment.Test.Name,
		AttemptNumber:  session.AttemptNumber,
		SectionID:      session.CurrentSectionID,
		SectionStartAt: session.SectionStartedAt,
	}
	if session.CurrentSection != nil {
		view.SectionName = session.CurrentSection.Category.Name
	}
	return view, nil
}

// ===== HELPERS =====

func (s *sessionService) loadSession(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ExamSession, error) {
	session, err := s.repo.Sessions().GetByAttempt(ctx, candidateID, testID, attemptNumber)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// advance moves the session into the section after the one just settled, or
// finishes the session when none remains. Exactly one transition.
func (s *sessionService) advance(ctx context.Context, session *models.ExamSession, settled *models.SectionStatus, now time.Time) (*SectionView, error) {
	next, err := s.repo.Tests().NextSection(ctx, session.Assignment.TestID, settled.SectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve next section: %w", err)
	}
	if next == nil {
		return s.finishSession(ctx, session, now)
	}

	var opened *models.SectionStatus
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Sessions().SetCurrentSection(ctx, session.ID, next.ID, now); err != nil {
			return fmt.Errorf("failed to move to next section: %w", err)
		}
		opened, err = tx.Sessions().OpenSectionStatus(ctx, session.ID, next.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	session.CurrentSectionID = &next.ID
	session.SectionStartedAt = &now

	s.logger.Info("Session advanced to next section",
		"session_id", session.ID,
		"section_id", next.ID)
	publishTiming(ctx, s.timing, s.logger, session, opened)

	return s.buildSectionView(ctx, session, opened, StatusOK, now)
}

// finishSession closes the session, scores it synchronously, and hands the
// report to the collaborators. Rendering and publishing never block or fail
// the completion.
func (s *sessionService) finishSession(ctx context.Context, session *models.ExamSession, now time.Time) (*SectionView, error) {
	if err := s.repo.Sessions().MarkCompleted(ctx, session.ID, now); err != nil {
		return nil, fmt.Errorf("failed to mark session completed: %w", err)
	}
	session.Completed = true
	session.CompletedAt = &now

	candidateID := session.Assignment.CandidateID
	testID := session.Assignment.TestID

	report, err := s.scoring.Score(ctx, candidateID, testID, session.AttemptNumber)
	if err != nil {
		// The session is closed either way; scoring can be replayed later.
		s.logger.LogError(err, "Scoring failed after session completion",
			"session_id", session.ID)
		view := s.completedView(session)
		view.Status = StatusScorePending
		return view, nil
	}

	s.logger.Info("Session completed and scored",
		"session_id", session.ID,
		"candidate_id", candidateID,
		"test_id", testID,
		"score", report.Score,
		"max_score", report.MaxScore)

	s.renderReport(ctx, candidateID, testID, session.AttemptNumber)
	s.publishCompletion(ctx, session, report, now)

	if s.timing != nil {
		if err := s.timing.ClearSession(ctx, session.ID); err != nil {
			s.logger.Warn("Failed to clear timing cache", "session_id", session.ID, "error", err)
		}
	}

	return s.completedView(session), nil
}

func (s *sessionService) renderReport(ctx context.Context, candidateID, testID uint, attemptNumber int) {
	if s.renderer == nil {
		return
	}
	data, err := s.scoring.BuildReportData(ctx, candidateID, testID, attemptNumber)
	if err != nil {
		s.logger.LogError(err, "Failed to assemble report data",
			"candidate_id", candidateID, "test_id", testID)
		return
	}
	path, err := s.renderer.Render(ctx, data)
	if err != nil {
		s.logger.LogError(err, "Report rendering failed",
			"candidate_id", candidateID, "test_id", testID)
		return
	}
	s.logger.Info("Score report rendered", "path", path)
}

func (s *sessionService) publishSectionSubmitted(ctx context.Context, session *models.ExamSession, status *models.SectionStatus, auto bool, submittedAt time.Time) {
	if s.publisher == nil {
		return
	}
	event := events.NewExamEvent(watermill.NewUUID(), events.EventSectionSubmitted, &events.SectionSubmittedEvent{
		SessionID:     session.ID,
		CandidateID:   session.Assignment.CandidateID,
		TestID:        session.Assignment.TestID,
		AttemptNumber: session.AttemptNumber,
		SectionID:     status.SectionID,
		SectionName:   status.Section.Category.Name,
		AutoSubmitted: auto,
		SubmittedAt:   submittedAt,
	})
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish section event", "session_id", session.ID, "error", err)
	}
}

func (s *sessionService) publishCompletion(ctx context.Context, session *models.ExamSession, report *models.ScoreReport, now time.Time) {
	if s.publisher == nil {
		return
	}
	completed := events.NewExamEvent(watermill.NewUUID(), events.EventSessionCompleted, &events.SessionCompletedEvent{
		SessionID:     session.ID,
		CandidateID:   session.Assignment.CandidateID,
		TestID:        session.Assignment.TestID,
		AttemptNumber: session.AttemptNumber,
		CompletedAt:   now,
	})
	if err := s.publisher.PublishExamEvent(ctx, completed); err != nil {
		s.logger.Warn("Failed to publish completion event", "session_id", session.ID, "error", err)
	}

	scored := events.NewExamEvent(watermill.NewUUID(), events.EventScoreComputed, &events.ScoreComputedEvent{
		CandidateID:   report.CandidateID,
		TestID:        report.TestID,
		AttemptNumber: report.AttemptNumber,
		Score:         report.Score,
		MaxScore:      report.MaxScore,
		Percentage:    report.Percentage(),
		ComputedAt:    now,
	})
	if err := s.publisher.PublishExamEvent(ctx, scored); err != nil {
		s.logger.Warn("Failed to publish score event", "session_id", session.ID, "error", err)
	}
}
