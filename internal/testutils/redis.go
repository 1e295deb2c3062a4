// Package testutils holds shared test helpers
package testutils

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Dizabanik/droll/internal/redis"
)

// CreateTestRedis starts an in-memory Redis and returns a client for it
// together with the server, so tests can inspect keys or fast-forward TTLs.
// Both are closed when the test finishes.
func CreateTestRedis(t *testing.T) (redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient(&redis.Config{Addrs: []string{mr.Addr()}})
	require.NoError(t, err, "failed to create redis client")
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// CreateTestRedisClient is CreateTestRedis for tests that only need the client
func CreateTestRedisClient(t *testing.T) redis.Client {
	t.Helper()

	client, _ := CreateTestRedis(t)
	return client
}
