package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/skillsage/internal/models"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
	"github.com/yoockh/skillsage/internal/utils"
	"gorm.io/datatypes"
)

// ProfileUpdate carries the fields a client wants to change; nil means keep.
type ProfileUpdate struct {
	FullName    *string         `json:"full_name"`
	PhoneNumber *string         `json:"phone_number"`
	Location    *string         `json:"location"`
	Title       *string         `json:"title"`
	Experience  *string         `json:"experience"`
	CVText      *string         `json:"cv_text"`
	Skills      []string        `json:"skills"`
	Preferences *datatypes.JSON `json:"preferences"`
}

type ProfileService interface {
	GetMe(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, in ProfileUpdate) (*models.Profile, error)
	SetImage(ctx context.Context, userID, url string) (*models.Profile, error)
	HasProfile(ctx context.Context, userID string) (bool, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
}

func NewProfileService(profiles pgrepo.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, in ProfileUpdate) (*models.Profile, error) {
	const op = "ProfileService.Update"

	p, err := s.loadOrNew(ctx, op, userID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string, def string) {
		if v == nil {
			return
		}
		if t := strings.TrimSpace(*v); t != "" {
			*dst = t
		} else {
			*dst = def
		}
	}
	set(&p.FullName, in.FullName, "")
	set(&p.PhoneNumber, in.PhoneNumber, "")
	set(&p.Location, in.Location, models.DefaultLocation)
	set(&p.Title, in.Title, models.DefaultTitle)
	set(&p.Experience, in.Experience, models.DefaultExperience)
	set(&p.CVText, in.CVText, "")
	if in.Skills != nil {
		skills := make([]string, 0, len(in.Skills))
		for _, sk := range in.Skills {
			if sk = strings.TrimSpace(sk); sk != "" {
				skills = append(skills, sk)
			}
		}
		p.Skills = skills
	}
	if in.Preferences != nil {
		p.Preferences = *in.Preferences
	}

	return p, s.save(ctx, op, p)
}

func (s *profileService) SetImage(ctx context.Context, userID, url string) (*models.Profile, error) {
	const op = "ProfileService.SetImage"

	if url == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "image url is required", nil)
	}
	p, err := s.loadOrNew(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	p.ProfileImage = url
	return p, s.save(ctx, op, p)
}

func (s *profileService) HasProfile(ctx context.Context, userID string) (bool, error) {
	const op = "ProfileService.HasProfile"

	if userID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	ok, err := s.profiles.Exists(ctx, userID)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to check profile existence", err)
	}
	return ok, nil
}

// loadOrNew returns the stored profile or a fresh one with display defaults.
func (s *profileService) loadOrNew(ctx context.Context, op, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	p, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return models.NewProfile(userID), nil
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) save(ctx context.Context, op string, p *models.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert profile", err)
	}
	return nil
}
