package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/llm"
	"github.com/yoockh/skillsage/internal/utils"
)

type Request struct {
	SessionID  string
	UserID     string
	Topic      string
	Difficulty models.Difficulty
	Entries    []models.TranscriptEntry
}

// Summarizer turns a transcript into free-text feedback.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

type LLMSummarizer struct {
	llm      llm.Provider
	prompts  *prompts.Manager
	recorder llm.CallRecorder
	timeout  time.Duration
}

func NewLLMSummarizer(provider llm.Provider, pm *prompts.Manager, rec llm.CallRecorder, timeout time.Duration) *LLMSummarizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMSummarizer{llm: provider, prompts: pm, recorder: rec, timeout: timeout}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	const op = "Summarizer.Summarize"

	if len(req.Entries) == 0 {
		return "", utils.E(utils.CodeNoContent, op, "transcript is empty", nil)
	}

	prompt, err := s.prompts.Render(prompts.Summary, map[string]any{
		"Topic":               req.Topic,
		"Difficulty":          req.Difficulty,
		"NoVerbal":            models.AnswerNoVerbal,
		"TranscriptionFailed": models.AnswerTranscriptionFailed,
		"Entries":             req.Entries,
	})
	if err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to build prompt", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.llm.Generate(ctx, prompt)
	text = strings.TrimSpace(text)
	switch {
	case errors.Is(err, llm.ErrEmptyResponse), err == nil && text == "":
		err = utils.E(utils.CodeUpstreamFormat, op, "summary generator returned an empty response", llm.ErrEmptyResponse)
	case err != nil:
		err = utils.Upstream(op, "summary generator is unavailable", err)
	}

	llm.Observe(ctx, s.recorder, models.AICall{
		Kind:      models.AICallSummary,
		Provider:  s.llm.Name(),
		UserID:    req.UserID,
		SessionID: req.SessionID,
	}, start, text, err)

	if err != nil {
		return "", err
	}
	return text, nil
}
