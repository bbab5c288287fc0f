package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fr-yash/CoBuilderr/internal/metrics"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

const (
	messageTTL     = 24 * time.Hour
	roomCacheDepth = 200 // most recent envelopes kept per room
)

// RedisStore handles Redis operations: the revoked-token blacklist and the
// recent-message cache backing the history endpoint.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// blacklistKey returns the key marking a revoked token. Tokens are hashed
// so raw credentials never land in Redis.
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("blacklist:%s", hex.EncodeToString(sum[:]))
}

// roomMessagesKey returns the key for a room's recent-message sorted set.
func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("room:%s:messages", roomID)
}

// RevokeToken blacklists a token until it would have expired anyway.
func (s *RedisStore) RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	start := time.Now()
	err := s.client.Set(ctx, blacklistKey(token), "1", ttl).Err()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	return err
}

// IsTokenRevoked reports whether a token has been blacklisted.
func (s *RedisStore) IsTokenRevoked(ctx context.Context, token string) bool {
	start := time.Now()
	n, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	return err == nil && n > 0
}

// AddMessage appends an envelope to a room's recent-message cache,
// trimming the set to roomCacheDepth entries.
func (s *RedisStore) AddMessage(ctx context.Context, roomID string, env models.MessageEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	key := roomMessagesKey(roomID)
	now := time.Now().UnixMilli()

	start := time.Now()
	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: data})
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-roomCacheDepth-1))
	pipe.Expire(ctx, key, messageTTL)
	_, err = pipe.Exec(ctx)
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	return err
}

// GetRoomMessages returns up to limit recent envelopes for a room in
// oldest-first order.
func (s *RedisStore) GetRoomMessages(ctx context.Context, roomID string, limit int) ([]models.MessageEnvelope, error) {
	if limit <= 0 || limit > roomCacheDepth {
		limit = roomCacheDepth
	}

	start := time.Now()
	raw, err := s.client.ZRange(ctx, roomMessagesKey(roomID), int64(-limit), -1).Result()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	envelopes := make([]models.MessageEnvelope, 0, len(raw))
	for _, item := range raw {
		var env models.MessageEnvelope
		if err := json.Unmarshal([]byte(item), &env); err != nil {
			continue // skip cache entries written by older versions
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, nil
}
