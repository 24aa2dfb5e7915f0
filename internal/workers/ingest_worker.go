package workers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/services"
)

// Ingester is the part of the reference service the workers drive.
type Ingester interface {
	Ingest(ctx context.Context, req models.IngestRequest) (int, error)
}

// IngestWorkerPool consumes reference ingestion requests from a Redis stream
// through a consumer group, so each request is handled by one worker.
type IngestWorkerPool struct {
	Redis      *redis.Client
	References Ingester
	NumWorkers int

	Logger logrus.FieldLogger

	Stream         string
	Group          string
	ConsumerPrefix string
	Block          time.Duration

	wg sync.WaitGroup
}

func (p *IngestWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.References == nil {
		return errors.New("IngestWorkerPool missing dependency: Redis/References must be set")
	}
	if p.Stream == "" {
		p.Stream = services.IngestStream
	}
	if p.Group == "" {
		p.Group = "reference-ingest"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Block <= 0 {
		p.Block = 5 * time.Second
	}
	if p.Logger == nil {
		p.Logger = logrus.StandardLogger()
	}

	err := p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return err
	}

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runConsumer(ctx, consumer)
		}()
	}
	return nil
}

// Wait blocks until every consumer has returned after ctx is cancelled.
func (p *IngestWorkerPool) Wait() { p.wg.Wait() }

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func (p *IngestWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    1,
			Block:    p.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("ingest stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(context.WithoutCancel(ctx), p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *IngestWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		s, _ := msg.Values[k].(string)
		return s
	}

	req := models.IngestRequest{
		Topic:      getStr("topic"),
		Difficulty: models.Difficulty(getStr("difficulty")),
	}
	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"topic":      req.Topic,
		"difficulty": req.Difficulty,
	})

	start := time.Now()
	n, err := p.References.Ingest(ctx, req)
	if err != nil {
		log.WithError(err).Error("reference ingestion failed")
		return
	}
	log.WithFields(logrus.Fields{"chunks": n, "took_ms": time.Since(start).Milliseconds()}).Info("reference ingestion done")
}
