package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pulseguard-risk-server/internal/domain"
)

// SummaryCache caches computed risk summaries per patient in Redis. Entries
// are invalidated whenever a visit is appended, so a cached summary always
// reflects the patient's current trajectory.
type SummaryCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewSummaryCache connects to Redis and verifies the connection.
func NewSummaryCache(redisURL string, defaultTTL time.Duration) (*SummaryCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &SummaryCache{
		redis:      client,
		defaultTTL: defaultTTL,
	}, nil
}

func summaryKey(patientID string) string {
	return "pulseguard:risk-summary:" + patientID
}

// Get returns the cached summary for a patient, or (nil, nil) on a miss.
func (c *SummaryCache) Get(ctx context.Context, patientID string) (*domain.RiskSummary, error) {
	raw, err := c.redis.Get(ctx, summaryKey(patientID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached summary: %w", err)
	}

	var summary domain.RiskSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decoding cached summary: %w", err)
	}
	return &summary, nil
}

// Set stores a summary with the default TTL.
func (c *SummaryCache) Set(ctx context.Context, patientID string, summary *domain.RiskSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := c.redis.Set(ctx, summaryKey(patientID), raw, c.defaultTTL).Err(); err != nil {
		return fmt.Errorf("caching summary: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary for a patient.
func (c *SummaryCache) Invalidate(ctx context.Context, patientID string) error {
	if err := c.redis.Del(ctx, summaryKey(patientID)).Err(); err != nil {
		return fmt.Errorf("invalidating summary: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *SummaryCache) Close() error {
	return c.redis.Close()
}
