package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDims is the vector width stored for reference chunks.
const EmbeddingDims = 768

// ReferenceDoc is one chunk of scraped study material used as question-generation context.
type ReferenceDoc struct {
	ID         string          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Topic      string          `gorm:"column:topic;type:text;index:idx_reference_topic_difficulty" json:"topic"`
	Difficulty Difficulty      `gorm:"column:difficulty;type:text;index:idx_reference_topic_difficulty" json:"difficulty"`
	SourceURL  string          `gorm:"column:source_url;type:text" json:"source_url"`
	Content    string          `gorm:"column:content;type:text" json:"content"`
	Embedding  pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"-"`
	CreatedAt  time.Time       `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (ReferenceDoc) TableName() string { return "reference_docs" }

// IngestRequest asks the ingest workers to gather material for a topic.
type IngestRequest struct {
	Topic      string     `json:"topic"`
	Difficulty Difficulty `json:"difficulty"`
}
