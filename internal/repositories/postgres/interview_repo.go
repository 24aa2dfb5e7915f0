package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicKey identifies a (topic, difficulty) pair used by recent sessions.
type TopicKey struct {
	Topic      string            `gorm:"column:topic"`
	Difficulty models.Difficulty `gorm:"column:difficulty"`
}

type InterviewRepository interface {
	// CreateWithQuestions persists the session and all of its questions in one transaction.
	CreateWithQuestions(ctx context.Context, s *models.InterviewSession, qs []models.InterviewQuestion) error
	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	QuestionByOrder(ctx context.Context, sessionID string, order int) (*models.InterviewQuestion, error)
	Questions(ctx context.Context, sessionID string) ([]models.InterviewQuestion, error)

	UpsertAnswer(ctx context.Context, a *models.InterviewAnswer) error
	AnswersByUser(ctx context.Context, sessionID, userID string) ([]models.InterviewAnswer, error)
	CountQuestions(ctx context.Context, sessionID string) (int, error)
	CountAnswered(ctx context.Context, sessionID, userID string) (int, error)
	MarkCompleted(ctx context.Context, sessionID string) error
	Transcript(ctx context.Context, sessionID, userID string) ([]models.TranscriptEntry, error)

	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SessionSummary, error)
	Delete(ctx context.Context, sessionID string) error
	RecentTopics(ctx context.Context, since time.Time) ([]TopicKey, error)
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) CreateWithQuestions(ctx context.Context, s *models.InterviewSession, qs []models.InterviewQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}
		if len(qs) == 0 {
			return nil
		}
		return tx.Create(&qs).Error
	})
}

func (r *interviewRepo) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var s models.InterviewSession
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *interviewRepo) QuestionByOrder(ctx context.Context, sessionID string, order int) (*models.InterviewQuestion, error) {
	var q models.InterviewQuestion
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND order_no = ?", sessionID, order).
		Take(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *interviewRepo) Questions(ctx context.Context, sessionID string) ([]models.InterviewQuestion, error) {
	var rows []models.InterviewQuestion
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("order_no ASC").
		Find(&rows).Error
	return rows, err
}

// UpsertAnswer is a single INSERT ... ON CONFLICT statement; the last writer wins.
func (r *interviewRepo) UpsertAnswer(ctx context.Context, a *models.InterviewAnswer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer_text", "time_taken", "submitted_at"}),
		}).
		Create(a).Error
}

func (r *interviewRepo) AnswersByUser(ctx context.Context, sessionID, userID string) ([]models.InterviewAnswer, error) {
	var rows []models.InterviewAnswer
	err := r.db.WithContext(ctx).
		Joins("JOIN interview_questions q ON q.id = interview_answers.question_id").
		Where("q.session_id = ? AND interview_answers.user_id = ?", sessionID, userID).
		Order("q.order_no ASC").
		Find(&rows).Error
	return rows, err
}

func (r *interviewRepo) CountQuestions(ctx context.Context, sessionID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.InterviewQuestion{}).
		Where("session_id = ?", sessionID).
		Count(&n).Error
	return int(n), err
}

func (r *interviewRepo) CountAnswered(ctx context.Context, sessionID, userID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.InterviewAnswer{}).
		Joins("JOIN interview_questions q ON q.id = interview_answers.question_id").
		Where("q.session_id = ? AND interview_answers.user_id = ?", sessionID, userID).
		Distinct("interview_answers.question_id").
		Count(&n).Error
	return int(n), err
}

// MarkCompleted only ever writes true.
func (r *interviewRepo) MarkCompleted(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Where("id = ? AND completed = ?", sessionID, false).
		Update("completed", true).Error
}

func (r *interviewRepo) Transcript(ctx context.Context, sessionID, userID string) ([]models.TranscriptEntry, error) {
	var rows []models.TranscriptEntry
	err := r.db.WithContext(ctx).
		Table("interview_questions AS q").
		Select("q.order_no, q.question_text, a.answer_text").
		Joins("JOIN interview_answers a ON a.question_id = q.id AND a.user_id = ?", userID).
		Where("q.session_id = ?", sessionID).
		Order("q.order_no ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *interviewRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	if err != nil || len(sessions) == 0 {
		return nil, err
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	type countRow struct {
		SessionID string
		N         int
	}
	var totals, answered []countRow
	if err := r.db.WithContext(ctx).
		Model(&models.InterviewQuestion{}).
		Select("session_id, COUNT(*) AS n").
		Where("session_id IN ?", ids).
		Group("session_id").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Table("interview_answers AS a").
		Select("q.session_id AS session_id, COUNT(DISTINCT a.question_id) AS n").
		Joins("JOIN interview_questions q ON q.id = a.question_id").
		Where("q.session_id IN ? AND a.user_id = ?", ids, userID).
		Group("q.session_id").
		Scan(&answered).Error; err != nil {
		return nil, err
	}

	byTotal := make(map[string]int, len(totals))
	for _, c := range totals {
		byTotal[c.SessionID] = c.N
	}
	byAnswered := make(map[string]int, len(answered))
	for _, c := range answered {
		byAnswered[c.SessionID] = c.N
	}

	out := make([]models.SessionSummary, len(sessions))
	for i, s := range sessions {
		out[i] = models.SessionSummary{
			InterviewSession: s,
			AnsweredCount:    byAnswered[s.ID],
			TotalCount:       byTotal[s.ID],
		}
	}
	return out, nil
}

// Delete removes answers, questions and the session together.
func (r *interviewRepo) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := tx.Model(&models.InterviewQuestion{}).Select("id").Where("session_id = ?", sessionID)
		if err := tx.Where("question_id IN (?)", sub).Delete(&models.InterviewAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.InterviewQuestion{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", sessionID).Delete(&models.InterviewSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrNotFound
		}
		return nil
	})
}

func (r *interviewRepo) RecentTopics(ctx context.Context, since time.Time) ([]TopicKey, error) {
	var rows []TopicKey
	err := r.db.WithContext(ctx).
		Model(&models.InterviewSession{}).
		Distinct("topic", "difficulty").
		Where("created_at >= ?", since).
		Order("topic, difficulty").
		Scan(&rows).Error
	return rows, err
}
