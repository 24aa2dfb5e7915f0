package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AICallKind string

const (
	AICallQuestions  AICallKind = "questions"
	AICallSummary    AICallKind = "summary"
	AICallTranscribe AICallKind = "transcribe"
	AICallResume     AICallKind = "resume"
	AICallLinks      AICallKind = "links"
)

const (
	AICallOK     = "done"
	AICallFailed = "failed"
)

// AICall is one outbound language-model or speech call, kept for a limited time.
type AICall struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      AICallKind         `bson:"kind" json:"kind"`
	Provider  string             `bson:"provider,omitempty" json:"provider,omitempty"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	SessionID string             `bson:"session_id,omitempty" json:"session_id,omitempty"`

	Status   string `bson:"status" json:"status"` // done|failed
	Error    string `bson:"error,omitempty" json:"error,omitempty"`
	Response string `bson:"response,omitempty" json:"response,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms" json:"processing_time_ms"`
	Timestamp        time.Time `bson:"timestamp" json:"timestamp"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
