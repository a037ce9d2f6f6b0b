package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"field-service-compliance/internal/models"
)

// RedisSink stores the snapshot document under a single key, the remote
// analogue of the original installation's local key-value store.
type RedisSink struct {
	client *redis.Client
	key    string
}

func NewRedisSink(client *redis.Client, key string) *RedisSink {
	return &RedisSink{client: client, key: key}
}

func (s *RedisSink) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: fmt.Errorf("marshal snapshot: %w", err)}
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return &models.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *RedisSink) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: fmt.Errorf("decode snapshot: %w", err)}
	}
	return snap, true, nil
}
