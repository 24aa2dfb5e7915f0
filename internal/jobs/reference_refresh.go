package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/skillsage/internal/models"
	pgrepo "github.com/yoockh/skillsage/internal/repositories/postgres"
)

// RecentTopics lists (topic, difficulty) pairs used since a point in time.
type RecentTopics interface {
	RecentTopics(ctx context.Context, since time.Time) ([]pgrepo.TopicKey, error)
}

// Refresher is what the job needs from the reference service.
type Refresher interface {
	HasMaterial(ctx context.Context, topic string, difficulty models.Difficulty) (bool, error)
	Enqueue(ctx context.Context, req models.IngestRequest) (string, error)
}

// ReferenceRefreshJob queues ingestion for recently used topics that still
// have no reference material.
type ReferenceRefreshJob struct {
	sessions   RecentTopics
	references Refresher
	schedule   string
	lookback   time.Duration
	log        logrus.FieldLogger
	cron       *cron.Cron
	now        func() time.Time
}

func NewReferenceRefreshJob(sessions RecentTopics, references Refresher, schedule string, log logrus.FieldLogger) *ReferenceRefreshJob {
	if schedule == "" {
		schedule = "0 3 * * *"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReferenceRefreshJob{
		sessions:   sessions,
		references: references,
		schedule:   schedule,
		lookback:   7 * 24 * time.Hour,
		log:        log,
		cron:       cron.New(),
		now:        time.Now,
	}
}

func (j *ReferenceRefreshJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.log.WithError(err).Error("reference refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reference refresh schedule %q: %w", j.schedule, err)
	}
	j.cron.Start()
	j.log.WithField("schedule", j.schedule).Info("reference refresh job started")
	return nil
}

// Stop waits for a running refresh to finish.
func (j *ReferenceRefreshJob) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce enqueues every recent pair lacking material and returns how many
// were queued.
func (j *ReferenceRefreshJob) RunOnce(ctx context.Context) (int, error) {
	keys, err := j.sessions.RecentTopics(ctx, j.now().UTC().Add(-j.lookback))
	if err != nil {
		return 0, fmt.Errorf("load recent topics: %w", err)
	}

	queued := 0
	for _, k := range keys {
		log := j.log.WithFields(logrus.Fields{"topic": k.Topic, "difficulty": k.Difficulty})

		has, err := j.references.HasMaterial(ctx, k.Topic, k.Difficulty)
		if err != nil {
			log.WithError(err).Warn("reference lookup failed")
			continue
		}
		if has {
			continue
		}
		if _, err := j.references.Enqueue(ctx, models.IngestRequest{Topic: k.Topic, Difficulty: k.Difficulty}); err != nil {
			log.WithError(err).Warn("failed to enqueue reference ingestion")
			continue
		}
		queued++
	}
	j.log.WithFields(logrus.Fields{"candidates": len(keys), "queued": queued}).Info("reference refresh finished")
	return queued, nil
}
