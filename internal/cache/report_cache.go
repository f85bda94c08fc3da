package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"byteneko/internal/model"
)

// ReportCache memoizes full analysis reports under a data-version
// fingerprint. At-most-one-writer-per-key is a convention, not a lock:
// concurrent misses may recompute and the last write wins.
type ReportCache interface {
	Get(ctx context.Context, key string) (*model.AnalysisReport, error)
	Set(ctx context.Context, key string, report *model.AnalysisReport) error
	Delete(ctx context.Context, key string) error

	// InvalidateSurvey drops every cached report for the survey,
	// best-effort. Called when questions, options or responses change.
	InvalidateSurvey(ctx context.Context, surveyID string) error
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a report cache with the given TTL (1h by default).
func NewReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &reportCache{
		client: client,
		ttl:    ttl,
	}
}

// Fingerprint builds the cache key from data-version markers, not content.
// Any new, deleted or changed response moves count or lastID and misses.
func Fingerprint(surveyID string, total int, lastID string) string {
	return fmt.Sprintf("survey:analysis:v1:%s:%d:%s", surveyID, total, lastID)
}

func surveyPrefix(surveyID string) string {
	return fmt.Sprintf("survey:analysis:v1:%s:*", surveyID)
}

func (c *reportCache) Get(ctx context.Context, key string) (*model.AnalysisReport, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *reportCache) Set(ctx context.Context, key string, report *model.AnalysisReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *reportCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *reportCache) InvalidateSurvey(ctx context.Context, surveyID string) error {
	iter := c.client.Scan(ctx, 0, surveyPrefix(surveyID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
