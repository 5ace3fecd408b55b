package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"streammeter/internal/core"
)

const (
	pingTimeout   = 5 * time.Second
	initRetryWait = 2 * time.Second
)

// RedisConfig holds connection settings for the Redis publisher
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// RedisPublisher appends ledger snapshots to a Redis Stream. The stream
// is the append-only channel consumers subscribe to (XREAD); the XADD
// message ID serves as the transaction identifier.
type RedisPublisher struct {
	client *redis.Client
	stream string
	ready  atomic.Bool
	logger *slog.Logger
}

// NewRedis creates a Redis publisher. The connection is verified by
// Init, not here, so the service can come up before Redis does.
func NewRedis(cfg RedisConfig, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisPublisher{
		client: client,
		stream: cfg.Stream,
		logger: logger,
	}
}

// Init pings Redis until it answers, then marks the publisher ready.
// Returns when ready or when ctx is cancelled.
func (p *RedisPublisher) Init(ctx context.Context) error {
	for {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := p.client.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			p.ready.Store(true)
			p.logger.Info("Publisher initialized",
				"component", "publisher",
				"stream", p.stream)
			return nil
		}

		p.logger.Warn("Publisher not reachable, retrying",
			"component", "publisher",
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(initRetryWait):
		}
	}
}

// Ready reports whether Init has completed
func (p *RedisPublisher) Ready() bool {
	return p.ready.Load()
}

// Publish appends the snapshot as one JSON entry to the stream
func (p *RedisPublisher) Publish(ctx context.Context, snapshot core.LedgerSnapshot) (string, error) {
	if !p.ready.Load() {
		return "", ErrNotReady
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"ledger":      string(payload),
			"publishedAt": time.Now().UnixMilli(),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to append snapshot to stream: %w", err)
	}

	return id, nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
