package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Defaults applied to a profile created on first update.
const (
	DefaultLocation     = "Not specified"
	DefaultTitle        = "Not specified"
	DefaultExperience   = "0 years"
	DefaultProfileImage = "https://i.imgur.com/7suwDp5.jpeg"
)

type Profile struct {
	UserID       string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FullName     string `gorm:"column:full_name;type:text" json:"full_name"`
	PhoneNumber  string `gorm:"column:phone_number;type:text" json:"phone_number"`
	Location     string `gorm:"column:location;type:text" json:"location"`
	Title        string `gorm:"column:title;type:text" json:"title"`
	Experience   string `gorm:"column:experience;type:text" json:"experience"`
	ProfileImage string `gorm:"column:profile_image;type:text" json:"profile_image"`
	CVText       string `gorm:"column:cv_text;type:text" json:"cv_text"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	// free-form UI preferences (interview voice, default difficulty, ...)
	Preferences datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// NewProfile returns a blank profile carrying the display defaults.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:       userID,
		Location:     DefaultLocation,
		Title:        DefaultTitle,
		Experience:   DefaultExperience,
		ProfileImage: DefaultProfileImage,
	}
}
