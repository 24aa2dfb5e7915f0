package mongo

import (
	"context"
	"time"

	"github.com/yoockh/skillsage/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AICallFilter narrows ListRecent; zero fields are ignored.
type AICallFilter struct {
	SessionID string
	UserID    string
	Kind      models.AICallKind
	Status    string
}

type AICallRepository interface {
	Insert(ctx context.Context, c *models.AICall) error
	ListRecent(ctx context.Context, f AICallFilter, limit int64) ([]models.AICall, error)
}

type aiCallRepo struct {
	col *mongo.Collection
}

func NewAICallRepo(db *mongo.Database) AICallRepository {
	return &aiCallRepo{col: db.Collection("ai_calls")}
}

func (r *aiCallRepo) Insert(ctx context.Context, c *models.AICall) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *aiCallRepo) ListRecent(ctx context.Context, f AICallFilter, limit int64) ([]models.AICall, error) {
	if limit <= 0 {
		limit = 100
	}

	cur, err := r.col.Find(ctx, f.bson(),
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.AICall{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f AICallFilter) bson() bson.M {
	q := bson.M{}
	if f.SessionID != "" {
		q["session_id"] = f.SessionID
	}
	if f.UserID != "" {
		q["user_id"] = f.UserID
	}
	if f.Kind != "" {
		q["kind"] = f.Kind
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}
