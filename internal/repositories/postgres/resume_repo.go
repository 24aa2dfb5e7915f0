package postgres

import (
	"context"

	"github.com/yoockh/skillsage/internal/models"
	"gorm.io/gorm"
)

type ResumeRepository interface {
	Insert(ctx context.Context, a *models.ResumeAnalysis) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.ResumeAnalysis, error)
}

type resumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) Insert(ctx context.Context, a *models.ResumeAnalysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *resumeRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.ResumeAnalysis, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.ResumeAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
