package services

import (
	"context"
	"fmt"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
)

// BlueprintIssue names one way a section config outstrips the question bank.
type BlueprintIssue struct {
	SectionID  uint                   `json:"section_id"`
	Category   string                 `json:"category"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
	Requested  int                    `json:"requested"`
	Available  int                    `json:"available"`
}

type TestDetail struct {
	Test           *models.Test     `json:"test"`
	TotalQuestions int              `json:"total_questions"`
	Issues         []BlueprintIssue `json:"blueprint_issues,omitempty"`
}

// TestService exposes blueprint reads and the feasibility check that keeps a
// section from requesting more questions than its category holds.
type TestService interface {
	Get(ctx context.Context, id uint) (*TestDetail, error)
	CheckBlueprint(ctx context.Context, testID uint) ([]BlueprintIssue, error)
}

type testService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewTestService(repo repositories.Repository, logger utils.Logger) TestService {
	return &testService{repo: repo, logger: logger}
}

func (s *testService) Get(ctx context.Context, id uint) (*TestDetail, error) {
	test, err := s.repo.Tests().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to load test: %w", err)
	}

	total := 0
	for i := range test.Sections {
		total += test.Sections[i].TotalQuestions()
	}

	issues, err := s.CheckBlueprint(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TestDetail{
		Test:           test,
		TotalQuestions: total,
		Issues:         issues,
	}, nil
}

func (s *testService) CheckBlueprint(ctx context.Context, testID uint) ([]BlueprintIssue, error) {
	sections, err := s.repo.Tests().GetSections(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}

	var issues []BlueprintIssue
	for _, sec := range sections {
		wanted := map[models.DifficultyLevel]int{
			models.DifficultyEasy:     sec.EasyQuestions,
			models.DifficultyModerate: sec.ModerateQuestions,
			models.DifficultyHard:     sec.HardQuestions,
		}
		for _, difficulty := range []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyModerate, models.DifficultyHard} {
			requested := wanted[difficulty]
			if requested == 0 {
				continue
			}
			available, err := s.repo.Questions().CountByCategoryAndDifficulty(ctx, sec.CategoryID, difficulty)
			if err != nil {
				return nil, fmt.Errorf("failed to count questions: %w", err)
			}
			if int(available) < requested {
				issues = append(issues, BlueprintIssue{
					SectionID:  sec.ID,
					Category:   sec.Category.Name,
					Difficulty: difficulty,
					Requested:  requested,
					Available:  int(available),
				})
			}
		}
	}

	if len(issues) > 0 {
		s.logger.Warn("Blueprint requests more questions than available",
			"test_id", testID,
			"issues", len(issues))
	}
	return issues, nil
}
