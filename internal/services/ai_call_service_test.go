package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/skillsage/internal/models"
	mongorepo "github.com/yoockh/skillsage/internal/repositories/mongo"
	"github.com/yoockh/skillsage/internal/utils"
)

type memAICallRepo struct {
	calls  []models.AICall
	ctxErr error
	err    error
}

func (m *memAICallRepo) Insert(ctx context.Context, c *models.AICall) error {
	m.ctxErr = ctx.Err()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, *c)
	return nil
}

func (m *memAICallRepo) ListRecent(_ context.Context, f mongorepo.AICallFilter, _ int64) ([]models.AICall, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.AICall
	for _, c := range m.calls {
		if f.SessionID == "" || c.SessionID == f.SessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func TestAICallRecordSurvivesCancelledRequest(t *testing.T) {
	repo := &memAICallRepo{}
	svc := NewAICallService(repo, time.Hour, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Record(ctx, &models.AICall{Kind: models.AICallSummary, SessionID: "s1", Status: models.AICallOK, Timestamp: ts})

	require.Len(t, repo.calls, 1)
	assert.NoError(t, repo.ctxErr)
	assert.Equal(t, ts.Add(time.Hour), repo.calls[0].ExpiresAt)

	list, err := svc.List(context.Background(), mongorepo.AICallFilter{SessionID: "s1"}, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAICallRecordFailureIsSwallowed(t *testing.T) {
	repo := &memAICallRepo{err: errors.New("mongo down")}
	svc := NewAICallService(repo, 0, quietLogger())

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), &models.AICall{Kind: models.AICallQuestions})
		svc.Record(context.Background(), nil)
	})

	_, err := svc.List(context.Background(), mongorepo.AICallFilter{}, 10)
	assert.True(t, utils.IsCode(err, utils.CodeInternal))
}
