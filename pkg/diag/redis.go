package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisKey is the list events are pushed to when RedisConfig.Key is
// empty.
const DefaultRedisKey = "routeglass:diag"

// RedisConfig configures a RedisSink.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// MaxLen caps the list; older events are trimmed. 0 means 1000.
	MaxLen int64
	// Timeout bounds each Emit round trip. 0 means 2s.
	Timeout time.Duration
}

// RedisSink keeps the most recent events in a capped Redis list, newest
// first, so a fleet of collectors can share one forensic buffer.
type RedisSink struct {
	client  *redis.Client
	key     string
	maxLen  int64
	timeout time.Duration
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	s := &RedisSink{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key:     cfg.Key,
		maxLen:  cfg.MaxLen,
		timeout: cfg.Timeout,
	}
	if s.key == "" {
		s.key = DefaultRedisKey
	}
	if s.maxLen <= 0 {
		s.maxLen = 1000
	}
	if s.timeout <= 0 {
		s.timeout = 2 * time.Second
	}
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.client.Close()
		return nil, fmt.Errorf("connecting to diag redis %s: %w", cfg.Addr, err)
	}
	return s, nil
}

// Key returns the Redis list name.
func (s *RedisSink) Key() string { return s.key }

// Emit pushes and trims in one MULTI/EXEC so the list never exceeds MaxLen.
func (s *RedisSink) Emit(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", event.ID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, s.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("pushing event to %s: %w", s.key, err)
	}
	return nil
}

// Recent returns up to n events matching filter, newest first. Limit and
// Offset in filter apply after matching.
func (s *RedisSink) Recent(ctx context.Context, n int64, filter Filter) ([]*Event, error) {
	if n <= 0 {
		n = s.maxLen
	}
	vals, err := s.client.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}

	events := make([]*Event, 0, len(vals))
	for _, v := range vals {
		var event Event
		if err := json.Unmarshal([]byte(v), &event); err != nil {
			continue
		}
		if event.Matches(filter) {
			events = append(events, &event)
		}
	}
	return filter.page(events), nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
