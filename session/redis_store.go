package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "persona-agent/errors"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "persona:session:"

// RedisStore keeps each session as a JSON value. Expiry is delegated to
// Redis: every write refreshes the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisStore) Create(ctx context.Context, id string) (*Session, error) {
	s := New(id)
	if err := r.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.WrapErrorf(apperrors.ErrSessionNotFound, "session %s", id)
	}
	if err != nil {
		return nil, apperrors.WrapErrorf(err, "load session %s", id)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, apperrors.WrapErrorf(err, "decode session %s", id)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return apperrors.WrapErrorf(err, "encode session %s", s.ID)
	}
	if err := r.client.Set(ctx, redisKey(s.ID), raw, r.ttl).Err(); err != nil {
		return apperrors.WrapErrorf(err, "store session %s", s.ID)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, redisKey(id)).Err()
}

// PurgeStale is a no-op: keys expire on their own TTL.
func (r *RedisStore) PurgeStale(context.Context, time.Time) (int, error) {
	return 0, nil
}
