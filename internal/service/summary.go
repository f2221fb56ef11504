package service

import (
	"context"

	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// SummaryService computes dashboard counts on every call.
type SummaryService struct {
	repo repository.SummaryRepository
}

func NewSummaryService(repo repository.SummaryRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

func (s *SummaryService) GetSummary(ctx context.Context) (*model.Summary, error) {
	summary, err := s.repo.GetSummary(ctx)
	if err != nil {
		return nil, errors.DatabaseError("failed to compute summary", err)
	}
	full := model.NewSummary()
	full.TotalEmployees = summary.TotalEmployees
	full.TotalDepartments = summary.TotalDepartments
	full.TotalComputers = summary.TotalComputers
	for status, n := range summary.ComputersByStatus {
		full.ComputersByStatus[status] = n
	}
	return full, nil
}
