//go:build integration

// Package testutil provides helpers for integration tests that need a live
// Redis.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the test Redis address from ROUTEGLASS_TEST_REDIS_ADDR,
// or "" when unset.
func RedisAddr() string {
	return os.Getenv("ROUTEGLASS_TEST_REDIS_ADDR")
}

// SkipIfNoRedis skips the test if the test Redis is not configured or not
// reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set ROUTEGLASS_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// RedisDiagDB is the database integration tests write diagnostics to, kept
// apart from DB 0 so a shared Redis is not disturbed.
const RedisDiagDB = 15

// ResetDiagKey deletes key in RedisDiagDB now and again when the test ends.
func ResetDiagKey(t *testing.T, key string) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: RedisDiagDB})
	del := func() {
		if err := client.Del(context.Background(), key).Err(); err != nil {
			t.Errorf("deleting %s: %v", key, err)
		}
	}
	del()
	t.Cleanup(func() {
		del()
		client.Close()
	})
}
