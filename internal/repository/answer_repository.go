package repository

import (
	"context"

	"placement-service/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StoredAnswer couples one answered record to its session.
type StoredAnswer struct {
	ID        string                `bson:"_id,omitempty" json:"id"`
	SessionID string                `bson:"session_id" json:"session_id"`
	Record    models.AnsweredRecord `bson:"record" json:"record"`
}

type AnswerRepository struct {
	Col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{Col: db.Collection("placement_answers")}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *StoredAnswer) error {
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	_, err := r.Col.InsertOne(ctx, answer)
	return err
}

func (r *AnswerRepository) FindBySessionID(ctx context.Context, sessionID string) ([]StoredAnswer, error) {
	cur, err := r.Col.Find(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var answers []StoredAnswer
	for cur.Next(ctx) {
		var a StoredAnswer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, nil
}
