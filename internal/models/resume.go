package models

import (
	"time"

	"github.com/lib/pq"
)

// ResumeAnalysis is the structured language-model review of a resume.
type ResumeAnalysis struct {
	ID              string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Role            string `gorm:"column:role;type:text" json:"role"`
	ExperienceLevel string `gorm:"column:experience_level;type:text" json:"experience_level"`

	Summary                 string         `gorm:"column:summary;type:text" json:"summary"`
	Score                   int            `gorm:"column:score;type:integer" json:"score"`
	Strengths               pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Weaknesses              pq.StringArray `gorm:"column:weaknesses;type:text[]" json:"weaknesses"`
	MissingSkills           pq.StringArray `gorm:"column:missing_skills;type:text[]" json:"missing_skills"`
	FormattingSuggestions   pq.StringArray `gorm:"column:formatting_suggestions;type:text[]" json:"formatting_suggestions"`
	InterviewFocusAreas     pq.StringArray `gorm:"column:interview_focus_areas;type:text[]" json:"interview_focus_areas"`
	SkillGaps               pq.StringArray `gorm:"column:skill_gaps;type:text[]" json:"skill_gaps"`
	ATSIssues               pq.StringArray `gorm:"column:ats_issues;type:text[]" json:"ats_issues"`
	TemplateRecommendations pq.StringArray `gorm:"column:template_recommendations;type:text[]" json:"template_recommendations"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (ResumeAnalysis) TableName() string { return "resume_analyses" }
