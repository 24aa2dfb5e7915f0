package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/utils"
)

type memReferenceRepo struct {
	docs       []models.ReferenceDoc
	lastTopic  string
	lastK      int
	nearestErr error
}

func (m *memReferenceRepo) InsertMany(_ context.Context, docs []models.ReferenceDoc) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memReferenceRepo) Nearest(_ context.Context, topic string, d models.Difficulty, _ []float32, k int) ([]models.ReferenceDoc, error) {
	m.lastTopic, m.lastK = topic, k
	if m.nearestErr != nil {
		return nil, m.nearestErr
	}
	return m.List(context.Background(), topic, d, k)
}

func (m *memReferenceRepo) List(_ context.Context, topic string, d models.Difficulty, limit int) ([]models.ReferenceDoc, error) {
	var out []models.ReferenceDoc
	for _, doc := range m.docs {
		if strings.EqualFold(doc.Topic, topic) && doc.Difficulty == d && len(out) < limit {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memReferenceRepo) Count(ctx context.Context, topic string, d models.Difficulty) (int, error) {
	rows, _ := m.List(ctx, topic, d, 1<<30)
	return len(rows), nil
}

type textLLM struct {
	out   string
	err   error
	calls int
}

func (f *textLLM) Generate(context.Context, string) (string, error) {
	f.calls++
	return f.out, f.err
}
func (f *textLLM) Name() string  { return "fake" }
func (f *textLLM) Close() error { return nil }

type fakeEmbedder struct {
	err   error
	texts int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.texts += len(texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

type fakePages map[string][]string

func (p fakePages) Paragraphs(_ context.Context, url string) ([]string, error) {
	if paras, ok := p[url]; ok {
		return paras, nil
	}
	return nil, fmt.Errorf("fetch %s: status 404", url)
}

func newReferenceFixture(t *testing.T) (*memReferenceRepo, *textLLM, *fakeEmbedder, *miniredis.Miniredis, ReferenceService) {
	t.Helper()
	pm, err := prompts.NewManager()
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &memReferenceRepo{}
	l := &textLLM{out: `{"links": ["https://a.example/stacks", "ftp://bad", "https://b.example/missing", "https://a.example/stacks"]}`}
	emb := &fakeEmbedder{}
	svc := NewReferenceService(ReferenceDeps{
		Repo:     repo,
		Redis:    rdb,
		LLM:      l,
		Embedder: emb,
		Pages: fakePages{
			"https://a.example/stacks": {"A stack is LIFO.", strings.Repeat("push pop ", 300)},
		},
		Prompts: pm,
		Log:     quietLogger(),
	})
	return repo, l, emb, mr, svc
}

func TestReferenceIngest(t *testing.T) {
	repo, _, emb, _, svc := newReferenceFixture(t)

	n, err := svc.Ingest(context.Background(), models.IngestRequest{Topic: " Data Structures ", Difficulty: "Easy"})
	require.NoError(t, err)
	assert.Equal(t, n, len(repo.docs))
	assert.GreaterOrEqual(t, n, 2)
	assert.Equal(t, n, emb.texts)
	for _, d := range repo.docs {
		assert.Equal(t, "Data Structures", d.Topic)
		assert.Equal(t, models.DifficultyEasy, d.Difficulty)
		assert.Equal(t, "https://a.example/stacks", d.SourceURL)
		assert.LessOrEqual(t, len(d.Content), chunkSize)
		assert.False(t, d.CreatedAt.IsZero())
	}

	ok, err := svc.HasMaterial(context.Background(), "data structures", models.DifficultyEasy)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReferenceIngestErrors(t *testing.T) {
	t.Run("bad links payload", func(t *testing.T) {
		_, l, _, _, svc := newReferenceFixture(t)
		l.out = "here are some links!"
		_, err := svc.Ingest(context.Background(), models.IngestRequest{Topic: "Go", Difficulty: "easy"})
		assert.True(t, utils.IsCode(err, utils.CodeUpstreamFormat), "got %v", err)
	})

	t.Run("no pages readable", func(t *testing.T) {
		_, l, _, _, svc := newReferenceFixture(t)
		l.out = `{"links": ["https://c.example/gone"]}`
		_, err := svc.Ingest(context.Background(), models.IngestRequest{Topic: "Go", Difficulty: "easy"})
		assert.True(t, utils.IsCode(err, utils.CodeNoContent), "got %v", err)
	})

	t.Run("embedder down", func(t *testing.T) {
		repo, _, emb, _, svc := newReferenceFixture(t)
		emb.err = errors.New("429")
		_, err := svc.Ingest(context.Background(), models.IngestRequest{Topic: "Go", Difficulty: "easy"})
		assert.True(t, utils.IsCode(err, utils.CodeUpstreamUnavailable), "got %v", err)
		assert.Empty(t, repo.docs)
	})

	t.Run("invalid request", func(t *testing.T) {
		_, l, _, _, svc := newReferenceFixture(t)
		_, err := svc.Ingest(context.Background(), models.IngestRequest{Topic: "Go", Difficulty: "insane"})
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
		assert.Zero(t, l.calls)
	})
}

func TestReferenceEnqueue(t *testing.T) {
	_, _, _, mr, svc := newReferenceFixture(t)

	id, err := svc.Enqueue(context.Background(), models.IngestRequest{Topic: "Go", Difficulty: "MEDIUM"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := mr.Stream(IngestStream)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"topic", "Go", "difficulty", "medium"}, entries[0].Values)

	_, err = svc.Enqueue(context.Background(), models.IngestRequest{Topic: ""})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestReferenceRetrieve(t *testing.T) {
	repo, _, emb, _, svc := newReferenceFixture(t)
	repo.docs = []models.ReferenceDoc{
		{Topic: "Go", Difficulty: models.DifficultyEasy, Content: "goroutines are cheap"},
		{Topic: "Rust", Difficulty: models.DifficultyEasy, Content: "ownership"},
	}

	docs, err := svc.Retrieve(context.Background(), "go", models.DifficultyEasy, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"goroutines are cheap"}, docs)
	assert.Equal(t, 3, repo.lastK)

	emb.err = errors.New("down")
	_, err = svc.Retrieve(context.Background(), "go", models.DifficultyEasy, 3)
	assert.True(t, utils.IsCode(err, utils.CodeUpstreamUnavailable))
}

func TestParseLinks(t *testing.T) {
	links, err := parseLinks("```json\n{\"links\": [\"https://a.io\", \"https://b.io\", \"https://c.io\", \"https://d.io\", \"https://e.io\", \"https://f.io\"]}\n```")
	require.NoError(t, err)
	assert.Len(t, links, maxLinks)

	_, err = parseLinks(`{"links": ["javascript:alert(1)"]}`)
	assert.Error(t, err)
}
