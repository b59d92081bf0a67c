// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/enhancify/internal/core"
)

type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Destroy(ctx context.Context, session *Session) error
	DestroyAllForUser(ctx context.Context, userID string) error
	DestroyOthers(ctx context.Context, userID, keepID string) error
}

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// RedisSessionStore keeps each session under its own key with a TTL and
// indexes session ids per user so every session can be torn down at once.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("create session: %w", core.ErrTokenExpired)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	indexKey := userSessionKeyPrefix + session.UserID

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, payload, ttl)
	pipe.SAdd(ctx, indexKey, session.ID)
	pipe.Expire(ctx, indexKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get session: %w", core.ErrTokenRevoked)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	return &session, nil
}

// Destroy is idempotent: removing a missing session is not an error.
func (s *RedisSessionStore) Destroy(ctx context.Context, session *Session) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+session.ID)
	if session.UserID != "" {
		pipe.SRem(ctx, userSessionKeyPrefix+session.UserID, session.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	return nil
}

func (s *RedisSessionStore) DestroyAllForUser(ctx context.Context, userID string) error {
	return s.destroyForUser(ctx, userID, "")
}

// DestroyOthers ends every session of the user except keepID.
func (s *RedisSessionStore) DestroyOthers(ctx context.Context, userID, keepID string) error {
	return s.destroyForUser(ctx, userID, keepID)
}

func (s *RedisSessionStore) destroyForUser(ctx context.Context, userID, keepID string) error {
	indexKey := userSessionKeyPrefix + userID

	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		if id == keepID {
			continue
		}
		pipe.Del(ctx, sessionKeyPrefix+id)
		pipe.SRem(ctx, indexKey, id)
	}
	if keepID == "" {
		pipe.Del(ctx, indexKey)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("destroy user sessions: %w", err)
	}

	return nil
}
