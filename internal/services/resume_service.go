package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/llm"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
	"github.com/yoockh/skillsage/internal/utils"
)

const maxResumeChars = 20000

type AnalyzeResumeInput struct {
	UserID     string
	Role       string
	Experience string
	ResumeText string // falls back to the profile's cv_text
}

type ResumeService interface {
	Analyze(ctx context.Context, in AnalyzeResumeInput) (*models.ResumeAnalysis, error)
	List(ctx context.Context, userID string, limit int) ([]models.ResumeAnalysis, error)
}

type resumeService struct {
	repo     pgrepo.ResumeRepository
	profiles ProfileService
	llm      llm.Provider
	prompts  *prompts.Manager
	recorder llm.CallRecorder
	timeout  time.Duration
}

func NewResumeService(repo pgrepo.ResumeRepository, profiles ProfileService, provider llm.Provider, pm *prompts.Manager, rec llm.CallRecorder, timeout time.Duration) ResumeService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &resumeService{repo: repo, profiles: profiles, llm: provider, prompts: pm, recorder: rec, timeout: timeout}
}

func (s *resumeService) Analyze(ctx context.Context, in AnalyzeResumeInput) (*models.ResumeAnalysis, error) {
	const op = "ResumeService.Analyze"

	in.Role = strings.TrimSpace(in.Role)
	in.Experience = strings.TrimSpace(in.Experience)
	if in.UserID == "" || in.Role == "" || in.Experience == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "role and experience are required", nil)
	}

	text, err := s.resumeText(ctx, in)
	if err != nil {
		return nil, err
	}

	prompt, err := s.prompts.Render(prompts.Resume, map[string]any{
		"Role":       in.Role,
		"Experience": in.Experience,
		"ResumeText": text,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build prompt", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.llm.Generate(callCtx, prompt)

	var a *models.ResumeAnalysis
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		err = utils.E(utils.CodeUpstreamFormat, op, "resume analyzer returned an empty response", err)
	case err != nil:
		err = utils.Upstream(op, "resume analyzer is unavailable", err)
	default:
		a, err = parseResumeAnalysis(raw)
		if err != nil {
			err = utils.E(utils.CodeUpstreamFormat, op, "resume analyzer returned malformed output", err)
		}
	}
	llm.Observe(callCtx, s.recorder, models.AICall{
		Kind:     models.AICallResume,
		Provider: s.llm.Name(),
		UserID:   in.UserID,
	}, start, raw, err)
	if err != nil {
		return nil, err
	}

	a.ID = uuid.NewString()
	a.UserID = in.UserID
	a.Role = in.Role
	a.ExperienceLevel = in.Experience
	a.CreatedAt = time.Now().UTC()
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save analysis", err)
	}
	return a, nil
}

func (s *resumeService) resumeText(ctx context.Context, in AnalyzeResumeInput) (string, error) {
	const op = "ResumeService.Analyze"

	text := strings.TrimSpace(in.ResumeText)
	if text == "" && s.profiles != nil {
		p, err := s.profiles.GetMe(ctx, in.UserID)
		if err != nil && !utils.IsCode(err, utils.CodeNotFound) {
			return "", err
		}
		if p != nil {
			text = strings.TrimSpace(p.CVText)
		}
	}
	if text == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "resume_text is required when the profile has no cv_text", nil)
	}
	if len(text) > maxResumeChars {
		text = text[:maxResumeChars]
	}
	return text, nil
}

func (s *resumeService) List(ctx context.Context, userID string, limit int) ([]models.ResumeAnalysis, error) {
	const op = "ResumeService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list analyses", err)
	}
	if rows == nil {
		rows = []models.ResumeAnalysis{}
	}
	return rows, nil
}

type rawAnalysis struct {
	Summary                 *string  `json:"summary"`
	Score                   *int     `json:"score"`
	Strengths               []string `json:"strengths"`
	Weaknesses              []string `json:"weaknesses"`
	MissingSkills           []string `json:"missing_skills"`
	FormattingSuggestions   []string `json:"formatting_suggestions"`
	InterviewFocusAreas     []string `json:"interview_focus_areas"`
	SkillGaps               []string `json:"skill_gaps"`
	ATSIssues               []string `json:"ats_issues"`
	TemplateRecommendations []string `json:"template_recommendations"`
}

// parseResumeAnalysis requires summary and an in-range score; list fields
// default to empty.
func parseResumeAnalysis(raw string) (*models.ResumeAnalysis, error) {
	var r rawAnalysis
	if err := llm.DecodeJSON(raw, &r); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	switch {
	case r.Summary == nil || strings.TrimSpace(*r.Summary) == "":
		return nil, errors.New("missing summary")
	case r.Score == nil:
		return nil, errors.New("missing score")
	case *r.Score < 0 || *r.Score > 100:
		return nil, fmt.Errorf("score %d out of range", *r.Score)
	}

	list := func(v []string) []string {
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return &models.ResumeAnalysis{
		Summary:                 strings.TrimSpace(*r.Summary),
		Score:                   *r.Score,
		Strengths:               list(r.Strengths),
		Weaknesses:              list(r.Weaknesses),
		MissingSkills:           list(r.MissingSkills),
		FormattingSuggestions:   list(r.FormattingSuggestions),
		InterviewFocusAreas:     list(r.InterviewFocusAreas),
		SkillGaps:               list(r.SkillGaps),
		ATSIssues:               list(r.ATSIssues),
		TemplateRecommendations: list(r.TemplateRecommendations),
	}, nil
}
