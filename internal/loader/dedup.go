package loader

import (
	"time"

	"github.com/nkurunziza/momo-ledger/pkg/logger"
	"github.com/nkurunziza/momo-ledger/pkg/redis"
)

// DedupCache fronts the database reference-code lookup so reprocessed
// batches short-circuit before touching the store. It is an accelerator
// only: the unique ref column stays the source of truth.
type DedupCache interface {
	IsProcessed(ref string) (bool, error)
	MarkProcessed(ref string) error
}

type RedisDedupCache struct {
	adapter      redis.RedisAdapter
	processedTTL time.Duration
	prefix       string
}

func NewRedisDedupCache(adapter redis.RedisAdapter) *RedisDedupCache {
	return &RedisDedupCache{
		adapter:      adapter,
		processedTTL: 24 * time.Hour,
		prefix:       "processed:",
	}
}

func (c *RedisDedupCache) IsProcessed(ref string) (bool, error) {
	exists, err := c.adapter.Exist(c.prefix + ref)
	if err != nil {
		// A broken cache must not block processing; the DB lookup still
		// guards correctness.
		logger.Warn("dedup cache check failed", "ref", ref, "error", err)
		return false, err
	}
	return exists > 0, nil
}

// MarkProcessed sets the marker only if absent, so the first writer's
// TTL window is never silently extended by replays.
func (c *RedisDedupCache) MarkProcessed(ref string) error {
	_, err := c.adapter.SetNX(c.prefix+ref, []byte("1"), c.processedTTL)
	return err
}

// NoopDedupCache is used when no Redis is wired; every check falls
// through to the database.
type NoopDedupCache struct{}

func (NoopDedupCache) IsProcessed(string) (bool, error) { return false, nil }
func (NoopDedupCache) MarkProcessed(string) error       { return nil }
