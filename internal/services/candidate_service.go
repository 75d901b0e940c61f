package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dejoyjm/shreds-platform/internal/models"
	"github.com/dejoyjm/shreds-platform/internal/repositories"
	"github.com/dejoyjm/shreds-platform/internal/utils"
)

// CandidateService verifies a candidate's access credentials and lists what
// they may sit. Identity itself lives with the external auth collaborator;
// this only checks the per-candidate secret codes issued alongside an
// assignment.
type CandidateService interface {
	VerifySecrets(ctx context.Context, req *VerifySecretsRequest) (*CandidateAssignments, error)
}

type candidateService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewCandidateService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) CandidateService {
	return &candidateService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *candidateService) VerifySecrets(ctx context.Context, req *VerifySecretsRequest) (*CandidateAssignments, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	candidate, err := s.repo.Candidates().FindBySecrets(ctx, req.Email, req.Phone, req.Secret1, req.Secret2)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCandidateNotFound
		}
		return nil, fmt.Errorf("failed to verify candidate: %w", err)
	}

	assignments, err := s.repo.Assignments().ListByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	result := &CandidateAssignments{
		CandidateID: candidate.ID,
		Assignments: make([]AssignmentView, 0, len(assignments)),
	}

	now := time.Now()
	for _, assignment := range assignments {
		view, err := s.assignmentView(ctx, assignment, now)
		if err != nil {
			return nil, err
		}
		result.Assignments = append(result.Assignments, *view)
	}

	s.logger.Info("Candidate verified",
		"candidate_id", candidate.ID,
		"assignments", len(result.Assignments))

	return result, nil
}

func (s *candidateService) assignmentView(ctx context.Context, assignment *models.TestAssignment, now time.Time) (*AssignmentView, error) {
	used, err := s.repo.Sessions().CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	sections, err := s.repo.Tests().GetSections(ctx, assignment.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	summaries := make([]SectionSummary, 0, len(sections))
	totalQuestions := 0
	for _, sec := range sections {
		summaries = append(summaries, SectionSummary{
			SectionID:       sec.ID,
			SectionName:     sec.Category.Name,
			DurationMinutes: sec.EffectiveDuration(),
		})
		totalQuestions += sec.TotalQuestions()
	}

	status := StatusOK
	switch {
	case now.Before(assignment.ValidFrom):
		status = StatusNotYetOpen
	case assignment.ValidTo != nil && now.After(*assignment.ValidTo):
		status = StatusWindowExpired
	case int(used) >= assignment.MaxAttempts:
		status = StatusMaxAttemptsExceeded
	}

	return &AssignmentView{
		AssignmentID:   assignment.ID,
		TestID:         assignment.TestID,
		TestName:       assignment.Test.Name,
		ValidFrom:      assignment.ValidFrom,
		ValidTo:        assignment.ValidTo,
		AttemptsUsed:   int(used),
		MaxAttempts:    assignment.MaxAttempts,
		CanStart:       status == StatusOK,
		Status:         status,
		Sections:       summaries,
		TotalQuestions: totalQuestions,
	}, nil
}
