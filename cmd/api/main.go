package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"field-service-compliance/internal/api"
	"field-service-compliance/internal/config"
	"field-service-compliance/internal/engine"
	"field-service-compliance/internal/identity"
	"field-service-compliance/internal/persist"
	"field-service-compliance/internal/ratelimit"
	"field-service-compliance/internal/report"
	"field-service-compliance/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	sink, err := persist.NewSink(ctx, cfg)
	if err != nil {
		log.Fatalf("init snapshot sink: %v", err)
	}

	seed := store.Seed(cfg.OrgID)
	snap, found, err := sink.Load(ctx)
	if err != nil {
		log.Fatalf("load snapshot: %v", err)
	}
	if !found {
		log.Printf("no snapshot found, seeding baseline data")
		snap = seed
	}
	st := store.New(cfg.OrgID, snap, seed)
	eng := engine.New(st, sink)

	var limiter *ratelimit.WriteLimiter
	if cfg.RateLimitCapacity > 0 && cfg.RedisAddr != "" {
		limiter = ratelimit.NewWriteLimiter(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.RateLimitCapacity, cfg.RateLimitRefill, time.Hour)
	}

	server := api.New(cfg, eng, st, report.New(st), identity.NewDirectory(st), limiter)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	log.Printf("compliance api listening on :%s (snapshot backend=%s)", cfg.HTTPPort, cfg.SnapshotBackend)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(shutdownCtx)
}
