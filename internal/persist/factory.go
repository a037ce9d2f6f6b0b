package persist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"field-service-compliance/internal/config"
)

// NewSink selects a snapshot sink from configuration.
func NewSink(ctx context.Context, cfg config.Config) (Sink, error) {
	switch cfg.SnapshotBackend {
	case "", "file":
		return NewFileSink(cfg.SnapshotPath), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedisSink(client, cfg.RedisKey), nil
	case "postgres":
		return NewPostgresSink(ctx, cfg.PostgresDSN, cfg.OrgID)
	case "s3":
		return NewS3Sink(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
}
