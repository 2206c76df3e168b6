package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/uniassist/supportcore/routercore/chat"
	"github.com/uniassist/supportcore/routercore/faults"
)

const sessionKeyPrefix = "chat_history:"

// RedisStore is the production Store. Each user's history is a Redis list:
// LPUSH puts the newest message at the head, LTRIM enforces the cap, and
// reads reverse LRANGE output back to chronological order. Single-key list
// operations are atomic on the Redis side, which is the only per-key
// atomicity the design needs.
type RedisStore struct {
	client     *redis.Client
	maxHistory int
	logger     *zap.Logger
}

// NewRedisStore connects to Redis and verifies it with a ping.
func NewRedisStore(ctx context.Context, opts *redis.Options, maxHistory int, logger *zap.Logger) (*RedisStore, error) {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{
		client:     client,
		maxHistory: maxHistory,
		logger:     logger,
	}, nil
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

// Append pushes the message and trims the list to the cap.
func (s *RedisStore) Append(ctx context.Context, userID string, msg chat.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := sessionKey(userID)
	if err := s.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, faults.ErrBackendDown)
	}
	if err := s.client.LTrim(ctx, key, 0, int64(s.maxHistory-1)).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, faults.ErrBackendDown)
	}
	return nil
}

// Read fetches the whole list and reverses it to oldest-first. Entries that
// fail to unmarshal are skipped with a warning; a backend failure yields an
// empty history.
func (s *RedisStore) Read(ctx context.Context, userID string) []chat.ChatMessage {
	key := sessionKey(userID)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		s.logger.Warn("session read failed, continuing without history",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	history := make([]chat.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg chat.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			s.logger.Warn("skipping corrupt history entry",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		history = append(history, msg)
	}
	return history
}

// Clear deletes the user's list.
func (s *RedisStore) Clear(ctx context.Context, userID string) bool {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		s.logger.Warn("session clear failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
