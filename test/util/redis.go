// Package util provides test helpers for Redis-backed integration tests.
package util

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	// Shared address for all tests in local dev
	sharedAddr    string
	containerOnce sync.Once
	containerErr  error
)

// SetupTestRedis returns a client for integration tests and a key prefix
// unique to the test. Keys under the prefix are deleted on cleanup.
//   - CI: connects to CI_REDIS_ADDR
//   - Local: uses a shared testcontainer (started once per package)
//
// The test is skipped in -short mode or when no container can be started.
func SetupTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}

	addr := getOrCreateSharedRedis(t)
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err(), "redis at %s not reachable", addr)

	prefix := GenerateKeyPrefix(t)
	t.Cleanup(func() {
		if err := DeleteKeys(context.Background(), client, prefix+"*"); err != nil {
			t.Logf("Warning: failed to delete keys %s*: %v", prefix, err)
		}
		_ = client.Close()
	})
	return client, prefix
}

// Addr returns the address of the shared Redis, starting it if needed.
func Addr(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}
	return getOrCreateSharedRedis(t)
}

// DeleteKeys removes every key matching pattern.
func DeleteKeys(ctx context.Context, client *redis.Client, pattern string) error {
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
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
	return client.Del(ctx, keys...).Err()
}

func getOrCreateSharedRedis(t *testing.T) string {
	if ciAddr := os.Getenv("CI_REDIS_ADDR"); ciAddr != "" {
		t.Log("Using external Redis from CI_REDIS_ADDR")
		return ciAddr
	}

	containerOnce.Do(func() {
		ctx := context.Background()
		t.Log("Starting shared Redis testcontainer for all tests")

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			containerErr = fmt.Errorf("failed to start redis container: %w", err)
			return
		}

		endpoint, err := container.Endpoint(ctx, "")
		if err != nil {
			containerErr = fmt.Errorf("failed to get redis endpoint: %w", err)
			return
		}
		sharedAddr = endpoint
		t.Logf("Shared container ready: %s", sharedAddr)
	})

	if containerErr != nil {
		t.Skipf("Redis container unavailable: %v", containerErr)
	}
	return sharedAddr
}

// GenerateKeyPrefix creates a unique key prefix for the test.
// Format: test:<sanitized_test_name>:<random_hex>:
func GenerateKeyPrefix(t *testing.T) string {
	name := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToLower(t.Name()))
	if len(name) > 40 {
		name = name[:40]
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("failed to generate random bytes for key prefix: %v", err)
	}
	return fmt.Sprintf("test:%s:%s:", name, hex.EncodeToString(randomBytes))
}
