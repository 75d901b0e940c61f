package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/cache"
	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
)

// sectionViewer builds client-facing views of a session's current section.
// Shared by the assignment and session services so start and resume render
// identically.
type sectionViewer struct {
	repo   repositories.Repository
	logger utils.Logger
}

// buildSectionView assembles the section payload a client renders: frozen
// question order, timing, and remaining seconds at now.
func (v *sectionViewer) buildSectionView(ctx context.Context, session *models.ExamSession, status *models.SectionStatus, token string, now time.Time) (*SectionView, error) {
	questions, err := v.materializeQuestions(ctx, session, &status.Section)
	if err != nil {
		return nil, err
	}

	deadline := status.Deadline()
	timeLeft := int(deadline.Sub(now).Seconds())
	if timeLeft < 0 {
		timeLeft = 0
	}

	return &SectionView{
		Status:          token,
		SessionID:       session.ID,
		CandidateID:     session.Assignment.CandidateID,
		TestID:          session.Assignment.TestID,
		AttemptNumber:   session.AttemptNumber,
		SectionID:       status.SectionID,
		SectionName:     status.Section.Category.Name,
		SectionStartAt:  status.StartedAt,
		DurationMinutes: status.Section.EffectiveDuration(),
		TimeLeftSeconds: timeLeft,
		Questions:       questions,
	}, nil
}

// completedView is the terminal payload: no section, no questions.
func (v *sectionViewer) completedView(session *models.ExamSession) *SectionView {
	return &SectionView{
		Status:        StatusCompleted,
		SessionID:     session.ID,
		CandidateID:   session.Assignment.CandidateID,
		TestID:        session.Assignment.TestID,
		AttemptNumber: session.AttemptNumber,
	}
}

// materializeQuestions returns the section's questions in their frozen
// display order, shuffling and persisting the permutation on first entry.
// Resume always replays the stored order.
func (v *sectionViewer) materializeQuestions(ctx context.Context, session *models.ExamSession, section *models.TestSection) ([]QuestionView, error) {
	rows, err := v.repo.Sessions().GetQuestionOrder(ctx, session.ID, section.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question order: %w", err)
	}
	if len(rows) == 0 {
		if rows, err = v.freezeQuestionOrder(ctx, session, section); err != nil {
			return nil, err
		}
	}

	views := make([]QuestionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, QuestionView{
			ID:         row.Question.ID,
			Text:       row.Question.Text,
			Difficulty: row.Question.Difficulty,
			Type:       row.Question.Type,
			Options:    row.Question.Options,
		})
	}
	return views, nil
}

func (v *sectionViewer) freezeQuestionOrder(ctx context.Context, session *models.ExamSession, section *models.TestSection) ([]*models.SectionQuestionOrder, error) {
	picked, err := v.pickSectionQuestions(ctx, session.Assignment.TestID, section)
	if err != nil {
		return nil, err
	}

	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	rows := make([]*models.SectionQuestionOrder, 0, len(picked))
	for i, q := range picked {
		rows = append(rows, &models.SectionQuestionOrder{
			SessionID:    session.ID,
			SectionID:    section.ID,
			QuestionID:   q.ID,
			DisplayOrder: i + 1,
		})
	}

	if err := v.repo.Sessions().SaveQuestionOrder(ctx, rows); err != nil {
		// A concurrent resume froze the order first; its permutation wins.
		if repositories.IsConflictError(err) {
			return v.repo.Sessions().GetQuestionOrder(ctx, session.ID, section.ID)
		}
		return nil, fmt.Errorf("failed to persist question order: %w", err)
	}
	return v.repo.Sessions().GetQuestionOrder(ctx, session.ID, section.ID)
}

// pickSectionQuestions draws from the test's frozen question set: questions in
// the section's category, up to the blueprint's per-difficulty counts, in set
// order.
func (v *sectionViewer) pickSectionQuestions(ctx context.Context, testID uint, section *models.TestSection) ([]*models.Question, error) {
	set, err := v.repo.Tests().GetQuestionSet(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question set: %w", err)
	}

	wanted := map[models.DifficultyLevel]int{
		models.DifficultyEasy:     section.EasyQuestions,
		models.DifficultyModerate: section.ModerateQuestions,
		models.DifficultyHard:     section.HardQuestions,
	}

	var picked []*models.Question
	for _, q := range set {
		if q.CategoryID != section.CategoryID {
			continue
		}
		if wanted[q.Difficulty] <= 0 {
			continue
		}
		wanted[q.Difficulty]--
		picked = append(picked, q)
	}
	return picked, nil
}

// publishTiming mirrors the current section's countdown into the live cache.
// Advisory only; a failed write is logged and ignored.
func publishTiming(ctx context.Context, timing cache.LiveTiming, logger utils.Logger, session *models.ExamSession, status *models.SectionStatus) {
	if timing == nil {
		return
	}
	entry := &cache.SectionTiming{
		SessionID:       session.ID,
		SectionID:       status.SectionID,
		SectionStartAt:  status.StartedAt,
		Deadline:        status.Deadline(),
		DurationMinutes: status.Section.EffectiveDuration(),
	}
	if err := timing.SetSectionTiming(ctx, entry); err != nil {
		logger.Warn("Failed to update live timing cache",
			"session_id", session.ID,
			"section_id", status.SectionID,
			"error", err)
	}
}
