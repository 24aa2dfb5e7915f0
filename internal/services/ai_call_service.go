package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/skillsage/internal/models"
	mongorepo "github.com/yoockh/skillsage/internal/repositories/mongo"
	"github.com/yoockh/skillsage/internal/utils"
)

// AICallService is the audit trail of outbound model and speech calls. It
// satisfies llm.CallRecorder.
type AICallService interface {
	Record(ctx context.Context, call *models.AICall)
	List(ctx context.Context, f mongorepo.AICallFilter, limit int64) ([]models.AICall, error)
}

type aiCallService struct {
	calls   mongorepo.AICallRepository
	ttl     time.Duration
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewAICallService(calls mongorepo.AICallRepository, ttl time.Duration, log logrus.FieldLogger) AICallService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &aiCallService{calls: calls, ttl: ttl, timeout: 5 * time.Second, log: log}
}

// Record writes the call even when ctx was cancelled by the request that
// triggered it; failures are only logged.
func (s *aiCallService) Record(ctx context.Context, call *models.AICall) {
	if call == nil {
		return
	}
	if call.Timestamp.IsZero() {
		call.Timestamp = time.Now().UTC()
	}
	call.ExpiresAt = call.Timestamp.Add(s.ttl)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.calls.Insert(ctx, call); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"kind":       call.Kind,
			"session_id": call.SessionID,
			"status":     call.Status,
		}).Warn("failed to record ai call")
	}
}

func (s *aiCallService) List(ctx context.Context, f mongorepo.AICallFilter, limit int64) ([]models.AICall, error) {
	const op = "AICallService.List"

	if limit > 500 {
		limit = 500
	}
	out, err := s.calls.ListRecent(ctx, f, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list ai calls", err)
	}
	return out, nil
}
