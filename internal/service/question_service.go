package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"placement-service/internal/models"
	"placement-service/internal/repository"
)

// QuestionService administers the questions collection that feeds the
// mongo-backed bank loader.
type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

func (s *QuestionService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return s.Repo.FindAll(ctx)
}

func (s *QuestionService) ListByLevel(ctx context.Context, level int) ([]models.Question, error) {
	if level < models.MinLevel || level > models.MaxLevel {
		return nil, fmt.Errorf("level %d out of range", level)
	}
	return s.Repo.FindByLevel(ctx, level)
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.Repo.FindByID(ctx, id)
}

// CreateQuestion validates the payload and curriculum gate before insert.
func (s *QuestionService) CreateQuestion(ctx context.Context, q *models.Question) error {
	if err := q.ValidatePayload(); err != nil {
		return err
	}
	if !models.MechanicAllowedAt(q.Mechanic, q.Level) {
		return fmt.Errorf("mechanic %s not permitted at level %d", q.Mechanic, q.Level)
	}
	return s.Repo.Create(ctx, q)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, update bson.M) error {
	return s.Repo.Update(ctx, id, update)
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
