package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/yoockh/skillsage/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReferenceRepository interface {
	InsertMany(ctx context.Context, docs []models.ReferenceDoc) error
	// Nearest returns the k chunks closest to query for the topic (case-insensitive) and difficulty.
	Nearest(ctx context.Context, topic string, difficulty models.Difficulty, query []float32, k int) ([]models.ReferenceDoc, error)
	List(ctx context.Context, topic string, difficulty models.Difficulty, limit int) ([]models.ReferenceDoc, error)
	Count(ctx context.Context, topic string, difficulty models.Difficulty) (int, error)
}

type referenceRepo struct {
	db *gorm.DB
}

func NewReferenceRepo(db *gorm.DB) ReferenceRepository {
	return &referenceRepo{db: db}
}

func (r *referenceRepo) InsertMany(ctx context.Context, docs []models.ReferenceDoc) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(docs, 100).Error
}

func (r *referenceRepo) Nearest(ctx context.Context, topic string, difficulty models.Difficulty, query []float32, k int) ([]models.ReferenceDoc, error) {
	if k <= 0 {
		k = 5
	}
	var rows []models.ReferenceDoc
	err := r.scoped(ctx, topic, difficulty).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{pgvector.NewVector(query)}},
		}).
		Limit(k).
		Find(&rows).Error
	return rows, err
}

func (r *referenceRepo) List(ctx context.Context, topic string, difficulty models.Difficulty, limit int) ([]models.ReferenceDoc, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.ReferenceDoc
	err := r.scoped(ctx, topic, difficulty).
		Omit("embedding").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *referenceRepo) Count(ctx context.Context, topic string, difficulty models.Difficulty) (int, error) {
	var n int64
	err := r.scoped(ctx, topic, difficulty).Model(&models.ReferenceDoc{}).Count(&n).Error
	return int(n), err
}

// scoped filters by topic and difficulty when they are set.
func (r *referenceRepo) scoped(ctx context.Context, topic string, difficulty models.Difficulty) *gorm.DB {
	q := r.db.WithContext(ctx)
	if topic != "" {
		q = q.Where("LOWER(topic) = LOWER(?)", topic)
	}
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	return q
}
