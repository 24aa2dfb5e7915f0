package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/prompts"
	"github.com/yoockh/skillsage/internal/providers/llm"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
	"github.com/yoockh/skillsage/internal/scrape"
	"github.com/yoockh/skillsage/internal/utils"
)

const (
	IngestStream = "reference:ingest"
	chunkSize    = 1500
	maxLinks     = 5
	embedBatch   = 32
)

// ParagraphSource turns a web page into paragraphs of plain text.
type ParagraphSource interface {
	Paragraphs(ctx context.Context, url string) ([]string, error)
}

type ReferenceService interface {
	// Enqueue schedules ingestion for the worker pool.
	Enqueue(ctx context.Context, req models.IngestRequest) (string, error)
	// Ingest gathers, embeds and stores material; returns the stored chunk count.
	Ingest(ctx context.Context, req models.IngestRequest) (int, error)
	Retrieve(ctx context.Context, topic string, difficulty models.Difficulty, k int) ([]string, error)
	List(ctx context.Context, topic string, difficulty models.Difficulty, limit int) ([]models.ReferenceDoc, error)
	HasMaterial(ctx context.Context, topic string, difficulty models.Difficulty) (bool, error)
}

type ReferenceDeps struct {
	Repo     pgrepo.ReferenceRepository
	Redis    *redis.Client
	LLM      llm.Provider
	Embedder llm.Embedder
	Pages    ParagraphSource
	Prompts  *prompts.Manager
	Recorder llm.CallRecorder
	Log      logrus.FieldLogger
	Timeout  time.Duration
}

type referenceService struct {
	ReferenceDeps
}

func NewReferenceService(d ReferenceDeps) ReferenceService {
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Timeout <= 0 {
		d.Timeout = 60 * time.Second
	}
	return &referenceService{ReferenceDeps: d}
}

func normalizeIngest(op string, req models.IngestRequest) (models.IngestRequest, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return req, utils.E(utils.CodeInvalidArgument, op, "topic is required", nil)
	}
	d, ok := models.ParseDifficulty(string(req.Difficulty))
	if !ok {
		return req, utils.E(utils.CodeInvalidArgument, op, "difficulty must be one of easy, medium, hard", nil)
	}
	req.Difficulty = d
	return req, nil
}

func (s *referenceService) Enqueue(ctx context.Context, req models.IngestRequest) (string, error) {
	const op = "ReferenceService.Enqueue"

	req, err := normalizeIngest(op, req)
	if err != nil {
		return "", err
	}
	if s.Redis == nil {
		return "", utils.E(utils.CodeUnavailable, op, "ingest queue is not configured", nil)
	}
	id, err := s.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: IngestStream,
		Values: map[string]any{
			"topic":      req.Topic,
			"difficulty": string(req.Difficulty),
		},
	}).Result()
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to enqueue ingestion", err)
	}
	return id, nil
}

func (s *referenceService) Ingest(ctx context.Context, req models.IngestRequest) (int, error) {
	const op = "ReferenceService.Ingest"

	req, err := normalizeIngest(op, req)
	if err != nil {
		return 0, err
	}
	if s.Embedder == nil {
		return 0, utils.E(utils.CodeUnavailable, op, "no embedding provider configured", nil)
	}

	links, err := s.links(ctx, req)
	if err != nil {
		return 0, err
	}

	log := s.Log.WithFields(logrus.Fields{"topic": req.Topic, "difficulty": req.Difficulty})
	var docs []models.ReferenceDoc
	for _, link := range links {
		paras, err := s.Pages.Paragraphs(ctx, link)
		if err != nil {
			log.WithError(err).WithField("url", link).Warn("skipping reference page")
			continue
		}
		for _, c := range scrape.Chunk(paras, chunkSize) {
			docs = append(docs, models.ReferenceDoc{
				ID:         uuid.NewString(),
				Topic:      req.Topic,
				Difficulty: req.Difficulty,
				SourceURL:  link,
				Content:    c,
			})
		}
	}
	if len(docs) == 0 {
		return 0, utils.E(utils.CodeNoContent, op, "no usable reference text found", nil)
	}

	if err := s.embed(ctx, docs); err != nil {
		return 0, utils.Upstream(op, "embedding provider is unavailable", err)
	}

	now := time.Now().UTC()
	for i := range docs {
		docs[i].CreatedAt = now
	}
	if err := s.Repo.InsertMany(ctx, docs); err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to store reference chunks", err)
	}
	log.WithFields(logrus.Fields{"links": len(links), "chunks": len(docs)}).Info("reference material ingested")
	return len(docs), nil
}

type linkList struct {
	Links []string `json:"links"`
}

func (s *referenceService) links(ctx context.Context, req models.IngestRequest) ([]string, error) {
	const op = "ReferenceService.links"

	prompt, err := s.Prompts.Render(prompts.Links, map[string]any{
		"Topic":      req.Topic,
		"Difficulty": req.Difficulty,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to build prompt", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.LLM.Generate(callCtx, prompt)
	var out []string
	if err != nil {
		err = utils.Upstream(op, "link generator is unavailable", err)
	} else {
		out, err = parseLinks(raw)
		if err != nil {
			err = utils.E(utils.CodeUpstreamFormat, op, "link generator returned malformed output", err)
		}
	}
	llm.Observe(callCtx, s.Recorder, models.AICall{Kind: models.AICallLinks, Provider: s.LLM.Name()}, start, raw, err)
	return out, err
}

// parseLinks keeps distinct absolute http(s) URLs, at most maxLinks.
func parseLinks(raw string) ([]string, error) {
	var l linkList
	if err := llm.DecodeJSON(raw, &l); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, link := range l.Links {
		link = strings.TrimSpace(link)
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, link)
		if len(out) == maxLinks {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no usable links")
	}
	return out, nil
}

func (s *referenceService) embed(ctx context.Context, docs []models.ReferenceDoc) error {
	for startIdx := 0; startIdx < len(docs); startIdx += embedBatch {
		end := min(startIdx+embedBatch, len(docs))
		texts := make([]string, 0, end-startIdx)
		for _, d := range docs[startIdx:end] {
			texts = append(texts, d.Content)
		}
		vecs, err := s.Embedder.Embed(ctx, texts)
		if err != nil {
			return err
		}
		if len(vecs) != len(texts) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
		}
		for i, v := range vecs {
			docs[startIdx+i].Embedding = pgvector.NewVector(v)
		}
	}
	return nil
}

func (s *referenceService) Retrieve(ctx context.Context, topic string, difficulty models.Difficulty, k int) ([]string, error) {
	const op = "ReferenceService.Retrieve"

	if s.Embedder == nil {
		return nil, nil
	}
	vecs, err := s.Embedder.Embed(ctx, []string{topic + " " + string(difficulty)})
	if err != nil {
		return nil, utils.Upstream(op, "embedding provider is unavailable", err)
	}
	if len(vecs) != 1 {
		return nil, utils.E(utils.CodeUpstreamFormat, op, "unexpected embedding count", nil)
	}
	docs, err := s.Repo.Nearest(ctx, topic, difficulty, vecs[0], k)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "similarity search failed", err)
	}
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out, nil
}

func (s *referenceService) List(ctx context.Context, topic string, difficulty models.Difficulty, limit int) ([]models.ReferenceDoc, error) {
	const op = "ReferenceService.List"

	rows, err := s.Repo.List(ctx, strings.TrimSpace(topic), difficulty, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reference material", err)
	}
	if rows == nil {
		rows = []models.ReferenceDoc{}
	}
	return rows, nil
}

func (s *referenceService) HasMaterial(ctx context.Context, topic string, difficulty models.Difficulty) (bool, error) {
	const op = "ReferenceService.HasMaterial"

	n, err := s.Repo.Count(ctx, topic, difficulty)
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to count reference material", err)
	}
	return n > 0, nil
}
