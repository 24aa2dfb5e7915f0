package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/utils"
	"gorm.io/gorm"
)

type UploadRepository interface {
	Insert(ctx context.Context, f *models.UploadedFile) error
	LatestByUser(ctx context.Context, userID string, kind models.UploadKind) (*models.UploadedFile, error)
}

type uploadRepo struct {
	db *gorm.DB
}

func NewUploadRepo(db *gorm.DB) UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) Insert(ctx context.Context, f *models.UploadedFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *uploadRepo) LatestByUser(ctx context.Context, userID string, kind models.UploadKind) (*models.UploadedFile, error) {
	var row models.UploadedFile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("upload_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
