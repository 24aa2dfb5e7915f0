package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/skillsage/internal/models"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
)

type fakeTopics struct {
	keys  []pgrepo.TopicKey
	err   error
	since time.Time
}

func (f *fakeTopics) RecentTopics(_ context.Context, since time.Time) ([]pgrepo.TopicKey, error) {
	f.since = since
	return f.keys, f.err
}

type fakeRefresher struct {
	has      map[string]bool
	enqueued []models.IngestRequest
	failOn   string
}

func (f *fakeRefresher) HasMaterial(_ context.Context, topic string, _ models.Difficulty) (bool, error) {
	return f.has[topic], nil
}

func (f *fakeRefresher) Enqueue(_ context.Context, req models.IngestRequest) (string, error) {
	if req.Topic == f.failOn {
		return "", errors.New("redis down")
	}
	f.enqueued = append(f.enqueued, req)
	return "1-0", nil
}

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRunOnceQueuesTopicsWithoutMaterial(t *testing.T) {
	topics := &fakeTopics{keys: []pgrepo.TopicKey{
		{Topic: "Go", Difficulty: models.DifficultyEasy},
		{Topic: "SQL", Difficulty: models.DifficultyHard},
		{Topic: "Rust", Difficulty: models.DifficultyMedium},
	}}
	refs := &fakeRefresher{has: map[string]bool{"SQL": true}, failOn: "Rust"}
	job := NewReferenceRefreshJob(topics, refs, "", quiet())
	now := time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []models.IngestRequest{{Topic: "Go", Difficulty: models.DifficultyEasy}}, refs.enqueued)
	assert.Equal(t, now.AddDate(0, 0, -7), topics.since)
}

func TestRunOnceLookupError(t *testing.T) {
	job := NewReferenceRefreshJob(&fakeTopics{err: errors.New("db down")}, &fakeRefresher{}, "", quiet())
	_, err := job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	job := NewReferenceRefreshJob(&fakeTopics{}, &fakeRefresher{}, "every tuesday", quiet())
	assert.Error(t, job.Start())

	ok := NewReferenceRefreshJob(&fakeTopics{}, &fakeRefresher{}, "@every 1h", quiet())
	require.NoError(t, ok.Start())
	ok.Stop()
}
