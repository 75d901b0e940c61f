package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
	"github.com/shopspring/decimal"
)

// Evaluation outcomes for a single question.
const (
	EvaluationCorrect     = "correct"
	EvaluationWrong       = "wrong"
	EvaluationUnattempted = "unattempted"
)

// ScoringService recomputes an attempt's score from the stored responses.
// The computation is pure over (question set, responses) and idempotent:
// rescoring the same attempt always lands on the same persisted row.
type ScoringService interface {
	// Score computes and persists the report for one attempt.
	Score(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error)

	// GetReport fetches a persisted report; attemptNumber 0 means latest.
	GetReport(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error)

	// BuildReportData assembles the full renderer payload with section,
	// category, and per-question detail.
	BuildReportData(ctx context.Context, candidateID, testID uint, attemptNumber int) (*ScoreReportData, error)
}

type scoringService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewScoringService(repo repositories.Repository, logger utils.Logger) ScoringService {
	return &scoringService{repo: repo, logger: logger}
}

func (s *scoringService) Score(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error) {
	comp, err := s.compute(ctx, candidateID, testID, attemptNumber)
	if err != nil {
		return nil, err
	}

	report := comp.report
	if err := s.repo.Reports().Upsert(ctx, &report); err != nil {
		return nil, fmt.Errorf("failed to persist score report: %w", err)
	}

	s.logger.Info("Score computed",
		"candidate_id", candidateID,
		"test_id", testID,
		"attempt_number", attemptNumber,
		"score", report.Score,
		"max_score", report.MaxScore)

	return &report, nil
}

func (s *scoringService) GetReport(ctx context.Context, candidateID, testID uint, attemptNumber int) (*models.ScoreReport, error) {
	var (
		report *models.ScoreReport
		err    error
	)
	if attemptNumber > 0 {
		report, err = s.repo.Reports().Get(ctx, candidateID, testID, attemptNumber)
	} else {
		report, err = s.repo.Reports().GetLatest(ctx, candidateID, testID)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load score report: %w", err)
	}
	return report, nil
}

func (s *scoringService) BuildReportData(ctx context.Context, candidateID, testID uint, attemptNumber int) (*ScoreReportData, error) {
	comp, err := s.compute(ctx, candidateID, testID, attemptNumber)
	if err != nil {
		return nil, err
	}

	candidate, err := s.repo.Candidates().GetByID(ctx, candidateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	test, err := s.repo.Tests().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	report := comp.report
	return &ScoreReportData{
		CandidateID:      candidateID,
		CandidateName:    candidate.Name,
		Email:            candidate.Email,
		Phone:            candidate.Phone,
		TestID:           testID,
		TestName:         test.Name,
		AttemptNumber:    attemptNumber,
		Score:            report.Score,
		MaxScore:         report.MaxScore,
		Percentage:       report.Percentage(),
		TotalCorrect:     report.TotalCorrect,
		TotalWrong:       report.TotalWrong,
		TotalUnattempted: report.TotalUnattempted,
		Sections:         comp.sections,
		Categories:       comp.categories,
		Audit:            comp.audit,
	}, nil
}

// ===== COMPUTATION =====

type scoreComputation struct {
	report     models.ScoreReport
	sections   []SectionBreakdown
	categories []CategoryBreakdown
	audit      []AuditRow
}

type bucketTally struct {
	score       decimal.Decimal
	maxScore    decimal.Decimal
	correct     int
	wrong       int
	unattempted int
}

// compute walks the test's full question set once. The maximum is the sum of
// positive marks over the entire set, independent of what the candidate saw
// or answered.
func (s *scoringService) compute(ctx context.Context, candidateID, testID uint, attemptNumber int) (*scoreComputation, error) {
	questions, err := s.repo.Tests().GetQuestionSet(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question set: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrTestNotFound
	}

	sections, err := s.repo.Tests().GetSections(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	sectionByCategory := make(map[uint]*models.TestSection, len(sections))
	for _, sec := range sections {
		sectionByCategory[sec.CategoryID] = sec
	}

	responses, err := s.repo.Responses().ListByAttempt(ctx, candidateID, testID, attemptNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	answerByQuestion := make(map[uint]*models.Response, len(responses))
	for _, r := range responses {
		answerByQuestion[r.QuestionID] = r
	}

	comp := &scoreComputation{
		report: models.ScoreReport{
			CandidateID:   candidateID,
			TestID:        testID,
			AttemptNumber: attemptNumber,
			Score:         decimal.Zero,
			MaxScore:      decimal.Zero,
			TotalPositive: decimal.Zero,
			TotalNegative: decimal.Zero,
			UpdatedAt:     time.Now(),
		},
	}

	tallies := make(map[uint]*bucketTally)
	var categoryOrder []uint

	for _, q := range questions {
		comp.report.MaxScore = comp.report.MaxScore.Add(q.PositiveMarks)

		tally, ok := tallies[q.CategoryID]
		if !ok {
			tally = &bucketTally{score: decimal.Zero, maxScore: decimal.Zero}
			tallies[q.CategoryID] = tally
			categoryOrder = append(categoryOrder, q.CategoryID)
		}
		tally.maxScore = tally.maxScore.Add(q.PositiveMarks)

		row := AuditRow{
			Category:      q.Category.Name,
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			CorrectRaw:    q.CorrectAnswer,
			CorrectChoice: q.ChoiceLabel(q.CorrectAnswer),
			MarksAwarded:  decimal.Zero,
			PositiveMarks: q.PositiveMarks,
			NegativeMarks: q.NegativeMarks,
		}
		if sec := sectionByCategory[q.CategoryID]; sec != nil {
			row.SectionName = q.Category.Name
		}

		response := answerByQuestion[q.ID]
		switch {
		case response == nil || !response.IsAttempted():
			row.Evaluation = EvaluationUnattempted
			comp.report.TotalUnattempted++
			tally.unattempted++
		case answersMatch(response.Answer, q.CorrectAnswer):
			row.AnswerRaw = response.Answer
			row.AnswerChoice = q.ChoiceLabel(response.Answer)
			row.Evaluation = EvaluationCorrect
			row.MarksAwarded = q.PositiveMarks
			comp.report.TotalPositive = comp.report.TotalPositive.Add(q.PositiveMarks)
			comp.report.TotalCorrect++
			tally.score = tally.score.Add(q.PositiveMarks)
			tally.correct++
		default:
			row.AnswerRaw = response.Answer
			row.AnswerChoice = q.ChoiceLabel(response.Answer)
			row.Evaluation = EvaluationWrong
			row.MarksAwarded = q.NegativeMarks.Neg()
			comp.report.TotalNegative = comp.report.TotalNegative.Add(q.NegativeMarks)
			comp.report.TotalWrong++
			tally.score = tally.score.Sub(q.NegativeMarks)
			tally.wrong++
		}

		comp.audit = append(comp.audit, row)
	}

	comp.report.Score = comp.report.TotalPositive.Sub(comp.report.TotalNegative)

	for _, categoryID := range categoryOrder {
		tally := tallies[categoryID]
		name := categoryName(questions, categoryID)

		comp.categories = append(comp.categories, CategoryBreakdown{
			Category:    name,
			Score:       tally.score,
			MaxScore:    tally.maxScore,
			Percentage:  models.PercentageOf(tally.score, tally.maxScore),
			Correct:     tally.correct,
			Wrong:       tally.wrong,
			Unattempted: tally.unattempted,
		})

		if sec := sectionByCategory[categoryID]; sec != nil {
			comp.sections = append(comp.sections, SectionBreakdown{
				SectionID:   sec.ID,
				SectionName: name,
				Score:       tally.score,
				MaxScore:    tally.maxScore,
				Percentage:  models.PercentageOf(tally.score, tally.maxScore),
				Correct:     tally.correct,
				Wrong:       tally.wrong,
				Unattempted: tally.unattempted,
			})
		}
	}

	return comp, nil
}

// answersMatch compares the stored literal answer against the key after
// trimming and case folding. Empty never matches.
func answersMatch(answer, correct string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	c := strings.ToLower(strings.TrimSpace(correct))
	if a == "" || c == "" {
		return false
	}
	return a == c
}

func categoryName(questions []*models.Question, categoryID uint) string {
	for _, q := range questions {
		if q.CategoryID == categoryID {
			return q.Category.Name
		}
	}
	return ""
}
