package service

import (
	"context"

	"quizbook/internal/apperror"
	"quizbook/internal/models"
	"quizbook/internal/repository"
)

type TablesService interface {
	CountTablesDB(ctx context.Context) (int, error)
	Counts(ctx context.Context) (*models.Stats, error)
}

type tablesService struct {
	tablesRepo repository.TablesRepository
}

func NewTablesService(tablesRepo repository.TablesRepository) TablesService {
	return &tablesService{tablesRepo: tablesRepo}
}

func (s *tablesService) CountTablesDB(ctx context.Context) (int, error) {
	count, err := s.tablesRepo.CountTablesDB(ctx)
	if err != nil {
		return 0, apperror.Internal(err, "could not count tables")
	}
	return count, nil
}

func (s *tablesService) Counts(ctx context.Context) (*models.Stats, error) {
	stats, err := s.tablesRepo.Counts(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "could not count rows")
	}
	return stats, nil
}
