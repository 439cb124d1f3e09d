// Package cache provides a short-lived Redis cache for audit reports, keyed by
// lookback window. It exists to absorb repeated dashboard refreshes without
// hammering the provider; entries expire on their own and are never enumerated.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nadmax/timecop/internal/audit"
	"github.com/nadmax/timecop/internal/metrics"
)

type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(redisAddr string, ttl time.Duration) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Get returns the cached report for a lookback window, or false on a miss.
// A nil receiver always misses, so callers need no cache-enabled branch.
func (c *ReportCache) Get(ctx context.Context, hours float64) (*audit.Report, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, key(hours)).Bytes()
	if err != nil {
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	var report audit.Report
	if err := json.Unmarshal(data, &report); err != nil {
		metrics.RecordCacheLookup(false)
		return nil, false
	}

	metrics.RecordCacheLookup(true)
	return &report, true
}

func (c *ReportCache) Set(ctx context.Context, hours float64, report *audit.Report) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key(hours), data, c.ttl).Err()
}

func (c *ReportCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func key(hours float64) string {
	return "audit:" + strconv.FormatFloat(hours, 'f', -1, 64)
}
