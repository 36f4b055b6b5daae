package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each dataset as a Redis list of lines at <prefix>:<dataset>
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Key returns the list key holding a dataset
func (s *RedisStore) Key(dataset Dataset) string {
	return s.prefix + ":" + string(dataset)
}

// Open reads the whole dataset list
func (s *RedisStore) Open(ctx context.Context, dataset Dataset) (io.ReadCloser, error) {
	lines, err := s.client.LRange(ctx, s.Key(dataset), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dataset, err)
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return io.NopCloser(&buf), nil
}

// Replace rewrites the dataset list in a MULTI/EXEC block
func (s *RedisStore) Replace(ctx context.Context, dataset Dataset, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	lines := splitLines(buf.String())

	key := s.Key(dataset)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(lines) > 0 {
			values := make([]any, len(lines))
			for i, line := range lines {
				values[i] = line
			}
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", dataset, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
