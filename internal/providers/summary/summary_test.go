package summary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/llm"
	"github.com/yoockh/skillsage/internal/utils"
)

type fakeLLM struct {
	out    string
	err    error
	prompt string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}
func (f *fakeLLM) Name() string  { return "fake" }
func (f *fakeLLM) Close() error { return nil }

type memRecorder struct{ calls []models.AICall }

func (m *memRecorder) Record(_ context.Context, call *models.AICall) { m.calls = append(m.calls, *call) }

func newSummarizer(t *testing.T, l *fakeLLM, rec llm.CallRecorder) *LLMSummarizer {
	t.Helper()
	pm, err := prompts.NewManager()
	require.NoError(t, err)
	return NewLLMSummarizer(l, pm, rec, 0)
}

var req = Request{
	SessionID:  "s1",
	UserID:     "u1",
	Topic:      "Data Structures",
	Difficulty: models.DifficultyEasy,
	Entries: []models.TranscriptEntry{
		{Order: 1, Question: "Explain stacks", Answer: "LIFO structure"},
		{Order: 2, Question: "Explain queues", Answer: models.AnswerTranscriptionFailed},
	},
}

func TestSummarize(t *testing.T) {
	l := &fakeLLM{out: "  Solid basics. Practice queues.  "}
	rec := &memRecorder{}

	got, err := newSummarizer(t, l, rec).Summarize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Solid basics. Practice queues.", got)

	assert.Contains(t, l.prompt, "Q1: Explain stacks")
	assert.Contains(t, l.prompt, "A2: "+models.AnswerTranscriptionFailed)
	assert.Less(t, strings.Index(l.prompt, "Q1:"), strings.Index(l.prompt, "Q2:"))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "s1", rec.calls[0].SessionID)
	assert.Equal(t, models.AICallSummary, rec.calls[0].Kind)
}

func TestSummarizeErrors(t *testing.T) {
	t.Run("empty transcript", func(t *testing.T) {
		l := &fakeLLM{out: "x"}
		_, err := newSummarizer(t, l, nil).Summarize(context.Background(), Request{SessionID: "s1"})
		assert.True(t, utils.IsCode(err, utils.CodeNoContent))
		assert.Empty(t, l.prompt, "provider must not be called")
	})

	t.Run("blank output", func(t *testing.T) {
		_, err := newSummarizer(t, &fakeLLM{out: "   "}, nil).Summarize(context.Background(), req)
		assert.True(t, utils.IsCode(err, utils.CodeUpstreamFormat), "got %v", err)
	})

	t.Run("provider down", func(t *testing.T) {
		rec := &memRecorder{}
		_, err := newSummarizer(t, &fakeLLM{err: errors.New("503")}, rec).Summarize(context.Background(), req)
		assert.True(t, utils.IsCode(err, utils.CodeUpstreamUnavailable), "got %v", err)
		require.Len(t, rec.calls, 1)
		assert.Equal(t, models.AICallFailed, rec.calls[0].Status)
	})
}
