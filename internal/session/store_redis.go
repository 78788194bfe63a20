// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/constants"
)

// # Redis Session Store

// RedisStore implements [Store] using Redis.
//
// # Layout
//
// Each session is a hash "session:{id}" holding user_id and csrf_token.
// The flash notice lives in its own string key "session:{id}:notice" so that
// GETDEL can consume it atomically — a hash field offers no single-command
// read-and-delete.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store with the standard TTL.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: constants.SessionTTL}
}

// hashKey returns the Redis key for the session's key-value hash.
func (store *RedisStore) hashKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID
}

// noticeKey returns the Redis key for the session's one-shot flash notice.
func (store *RedisStore) noticeKey(sessionID string) string {
	return constants.RedisPrefixSession + sessionID + constants.RedisSuffixNotice
}

/*
Get returns the value stored under key, or "" if absent.

Description: A missing hash or field is not an error — it is simply an
anonymous or fresh session.
*/
func (store *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	value, err := store.client.HGet(ctx, store.hashKey(sessionID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", apperr.Session(fmt.Errorf("session: get %q failed: %w", key, err))
	}
	return value, nil
}

/*
Set stores value under key and refreshes the session TTL.

Description: The TTL refresh keeps active sessions alive indefinitely while
letting abandoned ones expire.
*/
func (store *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	hashKey := store.hashKey(sessionID)

	// Pipeline the write and the TTL refresh into one round-trip.
	pipe := store.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	pipe.Expire(ctx, hashKey, store.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Session(fmt.Errorf("session: set %q failed: %w", key, err))
	}

	return nil
}

/*
Delete removes a single key from the session hash.

Description: Deleting an absent key is a no-op, which makes logout idempotent.
*/
func (store *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := store.client.HDel(ctx, store.hashKey(sessionID), key).Err(); err != nil {
		return apperr.Session(fmt.Errorf("session: delete %q failed: %w", key, err))
	}
	return nil
}

/*
SetNotice stores the pending flash message, overwriting any unread one.
*/
func (store *RedisStore) SetNotice(ctx context.Context, sessionID, message string) error {
	if err := store.client.Set(ctx, store.noticeKey(sessionID), message, store.ttl).Err(); err != nil {
		return apperr.Session(fmt.Errorf("session: set notice failed: %w", err))
	}
	return nil
}

/*
ConsumeNotice reads and atomically deletes the pending flash message.

Description: Redis GETDEL guarantees the notice is observed exactly once even
under concurrent reads of the same session.
*/
func (store *RedisStore) ConsumeNotice(ctx context.Context, sessionID string) (string, error) {
	message, err := store.client.GetDel(ctx, store.noticeKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", apperr.Session(fmt.Errorf("session: consume notice failed: %w", err))
	}
	return message, nil
}

/*
Destroy removes the whole session: the key-value hash and any pending notice.
*/
func (store *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := store.client.Del(ctx, store.hashKey(sessionID), store.noticeKey(sessionID)).Err(); err != nil {
		return apperr.Session(fmt.Errorf("session: destroy failed: %w", err))
	}
	return nil
}

/*
TTL reports the remaining lifetime of the session hash.
*/
func (store *RedisStore) TTL(ctx context.Context, sessionID string) (time.Duration, error) {
	ttl, err := store.client.TTL(ctx, store.hashKey(sessionID)).Result()
	if err != nil {
		return 0, apperr.Session(fmt.Errorf("session: ttl failed: %w", err))
	}
	return ttl, nil
}
