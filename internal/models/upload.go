package models

import "time"

type UploadKind string

const (
	UploadResume  UploadKind = "resume"
	UploadPicture UploadKind = "profile_picture"
)

// UploadedFile is the metadata row for an object written to the storage bucket.
type UploadedFile struct {
	ID       string     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string     `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Kind     UploadKind `gorm:"column:kind;type:text;index" json:"kind"`
	FileName string     `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath string     `gorm:"column:file_path;type:text" json:"file_path"`

	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type"`

	UploadAt time.Time `gorm:"column:upload_at;type:timestamptz" json:"upload_at"`
}

func (UploadedFile) TableName() string { return "uploaded_files" }
