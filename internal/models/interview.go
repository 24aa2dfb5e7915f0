package models

import (
	"strings"
	"time"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts the three levels case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

// AllocatedRange is the per-question answer time (seconds) the generator is asked for.
func (d Difficulty) AllocatedRange() (min, max int) {
	switch d {
	case DifficultyEasy:
		return 50, 90
	case DifficultyHard:
		return 90, 130
	default:
		return 70, 110
	}
}

// Answer text stored when no transcript is available.
const (
	AnswerNoVerbal            = "[no verbal answer]"
	AnswerTranscriptionFailed = "[transcription failed]"
)

type InterviewSession struct {
	ID            string     `gorm:"column:id;type:uuid;primaryKey" json:"session_id"`
	UserID        string     `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Topic         string     `gorm:"column:topic;type:text" json:"topic"`
	Difficulty    Difficulty `gorm:"column:difficulty;type:text" json:"difficulty"`
	TotalDuration int        `gorm:"column:total_duration;type:integer" json:"total_duration"` // minutes
	CreatedAt     time.Time  `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
	Completed     bool       `gorm:"column:completed;not null;default:false" json:"completed"`

	Questions []InterviewQuestion `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (InterviewSession) TableName() string { return "interview_sessions" }

type InterviewQuestion struct {
	ID            string `gorm:"column:id;type:uuid;primaryKey" json:"-"`
	SessionID     string `gorm:"column:session_id;type:uuid;uniqueIndex:uniq_session_order" json:"-"`
	Order         int    `gorm:"column:order_no;uniqueIndex:uniq_session_order" json:"order"`
	QuestionText  string `gorm:"column:question_text;type:text" json:"question"`
	AllocatedTime int    `gorm:"column:allocated_time;type:integer" json:"allocated_time"` // seconds

	Answers []InterviewAnswer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (InterviewQuestion) TableName() string { return "interview_questions" }

type InterviewAnswer struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	QuestionID  string    `gorm:"column:question_id;type:uuid;uniqueIndex:uniq_answer_question_user" json:"question_id"`
	UserID      string    `gorm:"column:user_id;type:uuid;uniqueIndex:uniq_answer_question_user" json:"user_id"`
	AnswerText  string    `gorm:"column:answer_text;type:text" json:"answer_text"`
	TimeTaken   int       `gorm:"column:time_taken;type:integer" json:"time_taken"` // seconds
	SubmittedAt time.Time `gorm:"column:submitted_at;type:timestamptz" json:"submitted_at"`
}

func (InterviewAnswer) TableName() string { return "interview_answers" }

// TranscriptEntry is one question/answer pair in question order.
type TranscriptEntry struct {
	Order    int    `gorm:"column:order_no" json:"order"`
	Question string `gorm:"column:question_text" json:"question"`
	Answer   string `gorm:"column:answer_text" json:"answer"`
}

// Progress is the answered/total state of one session for its owner.
type Progress struct {
	AnswerText    string `json:"answer_text"`
	AnsweredCount int    `json:"answered_count"`
	TotalCount    int    `json:"total_count"`
	Completed     bool   `json:"completed"`
}

// SessionSummary is a list row for the session history.
type SessionSummary struct {
	InterviewSession
	AnsweredCount int `json:"answered_count"`
	TotalCount    int `json:"total_count"`
}

type AnsweredQuestion struct {
	InterviewQuestion
	Answer *InterviewAnswer `json:"answer,omitempty"`
}

type SessionDetail struct {
	Session       *InterviewSession  `json:"session"`
	Questions     []AnsweredQuestion `json:"questions"`
	AnsweredCount int                `json:"answered_count"`
	TotalCount    int                `json:"total_count"`
}
