package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/skillsage/internal/models"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
	"github.com/yoockh/skillsage/internal/storage"
	"github.com/yoockh/skillsage/internal/utils"
)

const (
	MaxResumeBytes  = 10 << 20
	MaxPictureBytes = 5 << 20
)

var uploadRules = map[models.UploadKind]struct {
	maxBytes int64
	types    map[string]bool
}{
	models.UploadResume:  {MaxResumeBytes, map[string]bool{"application/pdf": true}},
	models.UploadPicture: {MaxPictureBytes, map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true}},
}

type UploadInput struct {
	UserID   string
	Kind     models.UploadKind
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

type UploadService interface {
	// Upload stores the file and its metadata. Profile pictures also become
	// the caller's profile image.
	Upload(ctx context.Context, in UploadInput) (*models.UploadedFile, error)
	Latest(ctx context.Context, userID string, kind models.UploadKind) (*models.UploadedFile, error)
}

type uploadService struct {
	repo     pgrepo.UploadRepository
	uploader storage.Uploader
	profiles ProfileService
}

func NewUploadService(repo pgrepo.UploadRepository, uploader storage.Uploader, profiles ProfileService) UploadService {
	return &uploadService{repo: repo, uploader: uploader, profiles: profiles}
}

func (s *uploadService) Upload(ctx context.Context, in UploadInput) (*models.UploadedFile, error) {
	const op = "UploadService.Upload"

	if in.UserID == "" || in.Body == nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and file are required", nil)
	}
	rule, ok := uploadRules[in.Kind]
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unsupported upload kind", nil)
	}
	if !rule.types[in.MimeType] {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unsupported file type "+in.MimeType, nil)
	}
	if in.Size <= 0 || in.Size > rule.maxBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file is empty or too large", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "file storage is not configured", nil)
	}

	now := time.Now().UTC()
	objectName := storage.ObjectName(string(in.Kind), in.UserID, in.FileName, now)
	url, err := s.uploader.Upload(ctx, objectName, in.MimeType, io.LimitReader(in.Body, rule.maxBytes))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	row := &models.UploadedFile{
		ID:       uuid.NewString(),
		UserID:   in.UserID,
		Kind:     in.Kind,
		FileName: in.FileName,
		FilePath: url,
		FileSize: int(in.Size),
		MimeType: in.MimeType,
		UploadAt: now,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist file metadata", err)
	}

	if in.Kind == models.UploadPicture && s.profiles != nil {
		if _, err := s.profiles.SetImage(ctx, in.UserID, url); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func (s *uploadService) Latest(ctx context.Context, userID string, kind models.UploadKind) (*models.UploadedFile, error) {
	const op = "UploadService.Latest"

	row, err := s.repo.LatestByUser(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "no uploaded file", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load file metadata", err)
	}
	return row, nil
}
