package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"ratemate/internal/config"
	"ratemate/internal/models"
)

const historyKeyPrefix = "ratemate:history:"

// RedisStore keeps session histories in redis, JSON-encoded per session key.
// Each append refreshes the key TTL, so idle sessions eventually expire.
type RedisStore struct {
	client *redis.Client
	cap    int
	ttl    time.Duration
}

// NewRedisStore connects to redis from app config and verifies the link.
func NewRedisStore(cfg config.RedisConfig, cap int, ttl time.Duration) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, cap: cap, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) ([]models.Turn, error) {
	raw, err := s.client.Get(ctx, historyKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	var turns []models.Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return turns, nil
}

// Append is a read-modify-write; concurrent appends for the same session are
// last-write-wins, matching the accepted in-memory behavior.
func (s *RedisStore) Append(ctx context.Context, sessionID string, turns ...models.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	stored, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	merged := trimTurns(append(stored, turns...), s.cap)
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.client.Set(ctx, historyKeyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set history: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
