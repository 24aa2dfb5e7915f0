package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores JSON values by key. A miss is (false, nil); callers treat
// any error as a miss too.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
}

// SummaryKey addresses a summary by session and transcript content, so a new
// answer naturally invalidates the previous entry.
func SummaryKey(sessionID string, transcript string) string {
	sum := sha256.Sum256([]byte(transcript))
	return "summary:" + sessionID + ":" + hex.EncodeToString(sum[:])
}

func SummaryPrefix(sessionID string) string {
	return "summary:" + sessionID + ":"
}
