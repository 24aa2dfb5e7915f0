package questions

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/llm"
	"github.com/yoockh/skillsage/internal/utils"
)

type Request struct {
	UserID        string
	Topic         string
	Difficulty    models.Difficulty
	TargetMinutes int
}

type Item struct {
	Order         int    `json:"order"`
	Question      string `json:"question"`
	AllocatedTime int    `json:"allocated_time"`
}

// Source produces the ordered question list for a new interview.
// Errors carry utils.CodeUpstreamUnavailable or utils.CodeUpstreamFormat.
type Source interface {
	Generate(ctx context.Context, req Request) ([]Item, error)
}

// Retriever returns reference passages for a topic, most relevant first.
type Retriever interface {
	Retrieve(ctx context.Context, topic string, difficulty models.Difficulty, k int) ([]string, error)
}

type Option func(*LLMSource)

func WithRetriever(r Retriever, k int) Option {
	return func(s *LLMSource) {
		s.retriever = r
		if k > 0 {
			s.contextDocs = k
		}
	}
}

func WithRecorder(r llm.CallRecorder) Option {
	return func(s *LLMSource) { s.recorder = r }
}

func WithTimeout(d time.Duration) Option {
	return func(s *LLMSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *LLMSource) { s.log = l }
}

// LLMSource builds a retrieval-augmented prompt and parses the model's JSON answer.
type LLMSource struct {
	llm     llm.Provider
	prompts *prompts.Manager

	retriever   Retriever
	contextDocs int
	recorder    llm.CallRecorder
	timeout     time.Duration
	log         logrus.FieldLogger
}

func NewLLMSource(provider llm.Provider, pm *prompts.Manager, opts ...Option) *LLMSource {
	s := &LLMSource{
		llm:         provider,
		prompts:     pm,
		contextDocs: 5,
		timeout:     60 * time.Second,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type promptData struct {
	Topic         string
	Difficulty    models.Difficulty
	TargetMinutes int
	MinSeconds    int
	MaxSeconds    int
	Context       []string
}

func (s *LLMSource) Generate(ctx context.Context, req Request) ([]Item, error) {
	const op = "QuestionSource.Generate"

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	minSec, maxSec := req.Difficulty.AllocatedRange()
	prompt, err := s.prompts.Render(prompts.Questions, promptData{
		Topic:         req.Topic,
		Difficulty:    req.Difficulty,
		TargetMinutes: req.TargetMinutes,
		MinSeconds:    minSec,
		MaxSeconds:    maxSec,
		Context:       s.retrieve(ctx, req),
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build prompt", err)
	}

	start := time.Now()
	raw, err := s.llm.Generate(ctx, prompt)

	var items []Item
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		err = utils.E(utils.CodeUpstreamFormat, op, "question generator returned an empty response", err)
	case err != nil:
		err = utils.Upstream(op, "question generator is unavailable", err)
	default:
		items, err = Parse(raw)
		if err != nil {
			err = utils.E(utils.CodeUpstreamFormat, op, "question generator returned malformed output", err)
		}
	}

	llm.Observe(ctx, s.recorder, models.AICall{
		Kind:     models.AICallQuestions,
		Provider: s.llm.Name(),
		UserID:   req.UserID,
	}, start, raw, err)

	if err != nil {
		return nil, err
	}
	return items, nil
}

// retrieve never fails generation; missing context only weakens the prompt.
func (s *LLMSource) retrieve(ctx context.Context, req Request) []string {
	if s.retriever == nil {
		return nil
	}
	docs, err := s.retriever.Retrieve(ctx, req.Topic, req.Difficulty, s.contextDocs)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"topic":      req.Topic,
			"difficulty": req.Difficulty,
		}).Warn("reference retrieval failed, generating without context")
		return nil
	}
	return docs
}
