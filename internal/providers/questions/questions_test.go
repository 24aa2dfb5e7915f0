package questions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/llm"
	"github.com/yoockh/skillsage/internal/utils"
)

type fakeLLM struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
	prompts    []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.generateFn(ctx, prompt)
}
func (f *fakeLLM) Name() string  { return "fake" }
func (f *fakeLLM) Close() error { return nil }

type fakeRetriever struct {
	docs []string
	err  error
}

func (f fakeRetriever) Retrieve(context.Context, string, models.Difficulty, int) ([]string, error) {
	return f.docs, f.err
}

type memRecorder struct {
	mu    sync.Mutex
	calls []models.AICall
}

func (m *memRecorder) Record(_ context.Context, call *models.AICall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, *call)
}

func newSource(t *testing.T, l llm.Provider, opts ...Option) *LLMSource {
	t.Helper()
	pm, err := prompts.NewManager()
	require.NoError(t, err)
	return NewLLMSource(l, pm, opts...)
}

var dsReq = Request{UserID: "u1", Topic: "Data Structures", Difficulty: models.DifficultyEasy, TargetMinutes: 25}

func TestGenerateSuccess(t *testing.T) {
	l := &fakeLLM{generateFn: func(context.Context, string) (string, error) {
		return `[{"order":1,"question":"Explain stacks","allocated_time":80}]`, nil
	}}
	rec := &memRecorder{}
	src := newSource(t, l, WithRetriever(fakeRetriever{docs: []string{"Stacks are LIFO."}}, 3), WithRecorder(rec))

	items, err := src.Generate(context.Background(), dsReq)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Order: 1, Question: "Explain stacks", AllocatedTime: 80}}, items)

	require.Len(t, l.prompts, 1)
	assert.Contains(t, l.prompts[0], "Stacks are LIFO.")
	assert.Contains(t, l.prompts[0], "between 50 and 90 seconds")

	require.Len(t, rec.calls, 1)
	assert.Equal(t, models.AICallQuestions, rec.calls[0].Kind)
	assert.Equal(t, models.AICallOK, rec.calls[0].Status)
	assert.Equal(t, "u1", rec.calls[0].UserID)
}

func TestGenerateRetrievalFailureIsNotFatal(t *testing.T) {
	l := &fakeLLM{generateFn: func(context.Context, string) (string, error) {
		return `[{"order":1,"question":"Explain stacks","allocated_time":80}]`, nil
	}}
	src := newSource(t, l, WithRetriever(fakeRetriever{err: errors.New("pg down")}, 3))

	items, err := src.Generate(context.Background(), dsReq)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NotContains(t, l.prompts[0], "Context:")
}

func TestGenerateFormatError(t *testing.T) {
	l := &fakeLLM{generateFn: func(context.Context, string) (string, error) {
		return `[{"order":1,"question":"Explain stacks"}]`, nil
	}}
	rec := &memRecorder{}
	src := newSource(t, l, WithRecorder(rec))

	_, err := src.Generate(context.Background(), dsReq)
	assert.True(t, utils.IsCode(err, utils.CodeUpstreamFormat), "got %v", err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, models.AICallFailed, rec.calls[0].Status)
	assert.Contains(t, rec.calls[0].Response, "Explain stacks")
}

func TestGenerateEmptyResponseIsFormatError(t *testing.T) {
	l := &fakeLLM{generateFn: func(context.Context, string) (string, error) {
		return "", llm.ErrEmptyResponse
	}}
	_, err := newSource(t, l).Generate(context.Background(), dsReq)
	assert.True(t, utils.IsCode(err, utils.CodeUpstreamFormat), "got %v", err)
}

func TestGenerateUnavailable(t *testing.T) {
	l := &fakeLLM{generateFn: func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	}}
	_, err := newSource(t, l).Generate(context.Background(), dsReq)
	assert.True(t, utils.IsCode(err, utils.CodeUpstreamUnavailable), "got %v", err)
}

func TestGenerateTimeout(t *testing.T) {
	l := &fakeLLM{generateFn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	src := newSource(t, l, WithTimeout(20*time.Millisecond))

	_, err := src.Generate(context.Background(), dsReq)
	assert.True(t, utils.IsCode(err, utils.CodeUpstreamUnavailable), "got %v", err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
