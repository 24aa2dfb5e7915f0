package llm

import (
	"context"
	"time"

	"github.com/yoockh/skillsage/internal/metrics"
	"github.com/yoockh/skillsage/internal/models"
	"github.com/yoockh/skillsage/internal/utils"
)

// CallRecorder keeps an audit trail of outbound calls. Implementations must
// not fail the caller; errors are theirs to log.
type CallRecorder interface {
	Record(ctx context.Context, call *models.AICall)
}

const maxRecordedResponse = 4000

// Observe reports one finished call to metrics and, when set, to rec.
func Observe(ctx context.Context, rec CallRecorder, call models.AICall, started time.Time, response string, err error) {
	d := time.Since(started)
	call.ProcessingTimeMS = d.Milliseconds()
	call.Timestamp = time.Now().UTC()
	call.Response = truncate(response, maxRecordedResponse)

	outcome := models.AICallOK
	call.Status = models.AICallOK
	if err != nil {
		call.Status = models.AICallFailed
		call.Error = err.Error()
		outcome = models.AICallFailed
		if code := utils.CodeOf(err); code != "" {
			outcome = string(code)
		}
	}
	metrics.ObserveAICall(string(call.Kind), outcome, d)

	if rec != nil {
		rec.Record(ctx, &call)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
