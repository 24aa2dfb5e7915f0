package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/utils"
)

type memResumeRepo struct{ rows []models.ResumeAnalysis }

func (m *memResumeRepo) Insert(_ context.Context, a *models.ResumeAnalysis) error {
	m.rows = append([]models.ResumeAnalysis{*a}, m.rows...)
	return nil
}

func (m *memResumeRepo) ListByUser(_ context.Context, userID string, _ int) ([]models.ResumeAnalysis, error) {
	var out []models.ResumeAnalysis
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

const analysisJSON = `{
  "summary": "Solid backend profile.",
  "score": 78,
  "strengths": ["Go", "Postgres"],
  "weaknesses": [],
  "missing_skills": ["Kubernetes"],
  "formatting_suggestions": [],
  "interview_focus_areas": ["system design"],
  "skill_gaps": [],
  "ats_issues": [],
  "template_recommendations": []
}`

func newResumeFixture(t *testing.T, l *textLLM) (*memResumeRepo, *memProfileRepo, ResumeService) {
	t.Helper()
	pm, err := prompts.NewManager()
	require.NoError(t, err)
	repo := &memResumeRepo{}
	profiles := newMemProfileRepo()
	return repo, profiles, NewResumeService(repo, NewProfileService(profiles), l, pm, nil, 0)
}

func TestResumeAnalyze(t *testing.T) {
	repo, _, svc := newResumeFixture(t, &textLLM{out: analysisJSON})

	a, err := svc.Analyze(context.Background(), AnalyzeResumeInput{UserID: "u1", Role: "Backend Engineer", Experience: "mid", ResumeText: "Go developer"})
	require.NoError(t, err)
	assert.Equal(t, 78, a.Score)
	assert.Equal(t, "Backend Engineer", a.Role)
	assert.Equal(t, []string{"Kubernetes"}, []string(a.MissingSkills))
	assert.NotNil(t, a.Weaknesses)
	assert.Len(t, repo.rows, 1)

	list, err := svc.List(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestResumeAnalyzeUsesProfileCV(t *testing.T) {
	l := &textLLM{out: analysisJSON}
	_, profiles, svc := newResumeFixture(t, l)

	_, err := svc.Analyze(context.Background(), AnalyzeResumeInput{UserID: "u1", Role: "SRE", Experience: "senior"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "got %v", err)
	assert.Zero(t, l.calls)

	profiles.rows["u1"] = models.Profile{UserID: "u1", CVText: "Ran Kubernetes clusters"}
	_, err = svc.Analyze(context.Background(), AnalyzeResumeInput{UserID: "u1", Role: "SRE", Experience: "senior"})
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)
}

func TestResumeAnalyzeUpstreamErrors(t *testing.T) {
	cases := []struct {
		name string
		llm  *textLLM
		code utils.Code
	}{
		{"prose", &textLLM{out: "Great resume!"}, utils.CodeUpstreamFormat},
		{"score out of range", &textLLM{out: `{"summary":"x","score":140}`}, utils.CodeUpstreamFormat},
		{"missing summary", &textLLM{out: `{"score":40}`}, utils.CodeUpstreamFormat},
		{"provider down", &textLLM{err: errors.New("dial tcp: refused")}, utils.CodeUpstreamUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, _, svc := newResumeFixture(t, tc.llm)
			_, err := svc.Analyze(context.Background(), AnalyzeResumeInput{UserID: "u1", Role: "SRE", Experience: "junior", ResumeText: "cv"})
			assert.True(t, utils.IsCode(err, tc.code), "got %v", err)
			assert.Empty(t, repo.rows)
		})
	}
}
