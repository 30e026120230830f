package service

import (
	"context"

	"placement-service/internal/models"
	"placement-service/internal/repository"
)

type ResultService struct {
	Repo *repository.ResultRepository
}

func NewResultService(repo *repository.ResultRepository) *ResultService {
	return &ResultService{Repo: repo}
}

func (s *ResultService) GetBySession(ctx context.Context, sessionID string) (*models.PlacementResult, error) {
	return s.Repo.FindBySessionID(ctx, sessionID)
}

func (s *ResultService) GetByUser(ctx context.Context, userID string) ([]models.PlacementResult, error) {
	return s.Repo.FindByUserID(ctx, userID)
}
