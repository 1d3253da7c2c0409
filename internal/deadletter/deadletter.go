package deadletter

import (
	"context"
	"fmt"

	"github.com/nkurunziza/momo-ledger/internal/model"
	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/nkurunziza/momo-ledger/pkg/redis"
)

const streamPrefix = "deadletter:"

// Sink receives raw fragments that failed parsing, keyed by batch and
// record offset, for later manual inspection.
type Sink interface {
	Route(ctx context.Context, batchID string, f model.ParseFailure) error
	Count(ctx context.Context, batchID string) (int64, error)
}

// RedisSink keeps dead letters in one Redis stream per batch.
type RedisSink struct {
	adapter redis.RedisAdapter
	maxLen  int64
}

func NewRedisSink(adapter redis.RedisAdapter, maxLen int64) *RedisSink {
	return &RedisSink{adapter: adapter, maxLen: maxLen}
}

func (s *RedisSink) Route(ctx context.Context, batchID string, f model.ParseFailure) error {
	key := streamPrefix + batchID
	_, err := s.adapter.XAdd(key, map[string]interface{}{
		"offset":   fmt.Sprintf("%d", f.Offset),
		"fragment": f.Fragment,
		"reason":   f.Reason,
	})
	if err != nil {
		return fmt.Errorf("route dead letter: %w", err)
	}
	if s.maxLen > 0 {
		if err := s.adapter.XTrimApprox(key, s.maxLen); err != nil {
			logger.Warn("failed to trim dead letter stream", "batch_id", batchID, "error", err)
		}
	}
	return nil
}

func (s *RedisSink) Count(ctx context.Context, batchID string) (int64, error) {
	return s.adapter.XLen(streamPrefix + batchID)
}
