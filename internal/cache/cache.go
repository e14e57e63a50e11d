package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"letterchain/internal/config"
	"letterchain/internal/logging"
	"letterchain/pkg/models"
)

// RedisCache memoizes parse results in redis, keyed by a content hash of
// the source document. Identical documents always produce identical keys,
// so repeated generations against the same resume or posting skip the
// parsing calls entirely. Outages degrade to cache misses; the pipeline
// never fails because redis is down.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// Stats is the monitoring summary served by the cache stats endpoint
type Stats struct {
	ConnectedClients       int64  `json:"connected_clients"`
	UsedMemoryHuman        string `json:"used_memory_human"`
	KeyspaceHits           int64  `json:"keyspace_hits"`
	KeyspaceMisses         int64  `json:"keyspace_misses"`
	TotalCommandsProcessed int64  `json:"total_commands_processed"`
}

// NewRedisCache creates a cache backed by the configured redis instance
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	ttl := cfg.Redis.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &RedisCache{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logging.GetGlobalLogger(),
	}
}

// Key derives the content-addressed cache key for a document. The prefix
// tags the document type so a text that is somehow both a resume and a job
// posting cannot cross-contaminate.
func Key(prefix, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// GetResume returns the cached parse of a resume, if present
func (c *RedisCache) GetResume(ctx context.Context, resumeText string) (*models.ResumeInfo, bool) {
	var info models.ResumeInfo
	if !c.get(ctx, Key("resume", resumeText), &info) {
		return nil, false
	}
	return &info, true
}

// SetResume caches a resume parse result
func (c *RedisCache) SetResume(ctx context.Context, resumeText string, info *models.ResumeInfo) {
	c.set(ctx, Key("resume", resumeText), info)
}

// GetJob returns the cached parse of a job posting, if present
func (c *RedisCache) GetJob(ctx context.Context, jobText string) (*models.JobInfo, bool) {
	var info models.JobInfo
	if !c.get(ctx, Key("job", jobText), &info) {
		return nil, false
	}
	return &info, true
}

// SetJob caches a job parse result
func (c *RedisCache) SetJob(ctx context.Context, jobText string, info *models.JobInfo) {
	c.set(ctx, Key("job", jobText), info)
}

func (c *RedisCache) get(ctx context.Context, key string, v interface{}) bool {
	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Cache get failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return false
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		c.logger.Warn("Cache entry corrupt, ignoring", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Cache set failed to serialize", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache set failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// GetStats summarizes redis server counters for monitoring
func (c *RedisCache) GetStats(ctx context.Context) (*Stats, error) {
	info, err := c.client.Info(ctx, "clients", "memory", "stats").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache stats: %w", err)
	}

	fields := parseInfo(info)
	return &Stats{
		ConnectedClients:       parseInt(fields["connected_clients"]),
		UsedMemoryHuman:        fields["used_memory_human"],
		KeyspaceHits:           parseInt(fields["keyspace_hits"]),
		KeyspaceMisses:         parseInt(fields["keyspace_misses"]),
		TotalCommandsProcessed: parseInt(fields["total_commands_processed"]),
	}, nil
}

// Ping tests the redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// IsHealthy checks if redis is connected and healthy
func (c *RedisCache) IsHealthy(ctx context.Context) error {
	return c.Ping(ctx)
}

// Close closes the redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// parseInfo splits a redis INFO payload into key/value pairs
func parseInfo(info string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 {
			fields[parts[0]] = parts[1]
		}
	}
	return fields
}

func parseInt(s string) int64 {
	var n int64
	fmt.Sscanf(s, "%d", &n)
	return n
}
