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
	"gorm.io/datatypes"
)

type RecordProctoringEventRequest struct {
	SessionID uint                       `json:"session_id" validate:"required"`
	Type      models.ProctoringEventType `json:"type" validate:"required"`
	Severity  int                        `json:"severity" validate:"min=0,max=3"`
	Data      datatypes.JSON             `json:"data"`
}

// TimingView is what the proctoring UI polls to drive its countdown.
type TimingView struct {
	SessionID       uint      `json:"session_id"`
	SectionID       uint      `json:"section_id"`
	SectionStartAt  time.Time `json:"section_start_time"`
	Deadline        time.Time `json:"deadline"`
	DurationMinutes int       `json:"duration_minutes"`
	TimeLeftSeconds int       `json:"time_left_seconds"`
}

// ProctoringService records observations about a live session. It is strictly
// append-and-read: nothing here ever mutates session or section state.
type ProctoringService interface {
	RecordEvent(ctx context.Context, req *RecordProctoringEventRequest) error
	SessionTiming(ctx context.Context, sessionID uint) (*TimingView, error)
}

type proctoringService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	timing    cache.LiveTiming
}

func NewProctoringService(
	repo repositories.Repository,
	logger utils.Logger,
	validator *utils.Validator,
	publisher events.EventPublisher,
	timing cache.LiveTiming,
) ProctoringService {
	return &proctoringService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		timing:    timing,
	}
}

func (s *proctoringService) RecordEvent(ctx context.Context, req *RecordProctoringEventRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	session, err := s.repo.Sessions().GetByID(ctx, req.SessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	event := &models.ProctoringEvent{
		SessionID:     session.ID,
		AttemptNumber: session.AttemptNumber,
		Type:          req.Type,
		Data:          req.Data,
		Severity:      req.Severity,
	}
	if err := s.repo.Proctoring().CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record proctoring event: %w", err)
	}

	if req.Severity >= models.SeverityCritical {
		s.publishAlert(ctx, session, req)
	}
	return nil
}

// SessionTiming serves the countdown from the live cache, falling back to the
// persisted section status on a miss and repopulating the cache.
func (s *proctoringService) SessionTiming(ctx context.Context, sessionID uint) (*TimingView, error) {
	now := time.Now()

	if s.timing != nil {
		if entry, err := s.timing.GetSectionTiming(ctx, sessionID); err == nil {
			return timingView(entry, now), nil
		}
	}

	session, err := s.repo.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Completed || session.CurrentSectionID == nil {
		return nil, ErrSessionClosed
	}

	status, err := s.repo.Sessions().GetSectionStatus(ctx, session.ID, *session.CurrentSectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load section status: %w", err)
	}

	publishTiming(ctx, s.timing, s.logger, session, status)

	entry := &cache.SectionTiming{
		SessionID:       session.ID,
		SectionID:       status.SectionID,
		SectionStartAt:  status.StartedAt,
		Deadline:        status.Deadline(),
		DurationMinutes: status.Section.EffectiveDuration(),
	}
	return timingView(entry, now), nil
}

func timingView(entry *cache.SectionTiming, now time.Time) *TimingView {
	return &TimingView{
		SessionID:       entry.SessionID,
		SectionID:       entry.SectionID,
		SectionStartAt:  entry.SectionStartAt,
		Deadline:        entry.Deadline,
		DurationMinutes: entry.DurationMinutes,
		TimeLeftSeconds: entry.TimeLeft(now),
	}
}

func (s *proctoringService) publishAlert(ctx context.Context, session *models.ExamSession, req *RecordProctoringEventRequest) {
	if s.publisher == nil {
		return
	}
	event := events.NewExamEvent(watermill.NewUUID(), events.EventProctoringAlert, &events.ProctoringAlertEvent{
		SessionID:     session.ID,
		CandidateID:   session.Assignment.CandidateID,
		AttemptNumber: session.AttemptNumber,
		AlertType:     string(req.Type),
		Severity:      req.Severity,
		ObservedAt:    time.Now(),
	})
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish proctoring alert",
			"session_id", session.ID, "error", err)
	}
}
