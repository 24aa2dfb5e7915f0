package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/yoockh/skillsage/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the interview
// and upload tables migrated. Postgres-only column types (text[], vector)
// are left out.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection so the in-memory database is shared inside transactions
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.InterviewSession{},
		&models.InterviewQuestion{},
		&models.InterviewAnswer{},
		&models.UploadedFile{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// SeedSession stores a session with n questions numbered 1..n.
func SeedSession(t *testing.T, db *gorm.DB, sessionID, userID string, n int) *models.InterviewSession {
	t.Helper()

	s := &models.InterviewSession{
		ID:            sessionID,
		UserID:        userID,
		Topic:         "Data Structures",
		Difficulty:    models.DifficultyEasy,
		TotalDuration: 25,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	for i := 1; i <= n; i++ {
		q := models.InterviewQuestion{
			ID:            fmt.Sprintf("%s-q%d", sessionID, i),
			SessionID:     sessionID,
			Order:         i,
			QuestionText:  fmt.Sprintf("Question %d", i),
			AllocatedTime: 60,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	return s
}
