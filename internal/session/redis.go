package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/josinaldojr/docqa/internal/rag"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "docqa:session:"

// RedisStore keeps each session as a Redis list of JSON-encoded turns.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A ttl of zero keeps sessions forever;
// otherwise the expiry is refreshed on every append.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisStore) History(ctx context.Context, sessionID string) ([]rag.Message, error) {
	vals, err := r.client.LRange(ctx, keyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	msgs := make([]rag.Message, 0, len(vals))
	for _, v := range vals {
		var m rag.Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisStore) Append(ctx context.Context, sessionID string, msgs ...rag.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	vals := make([]any, len(msgs))
	for i, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		vals[i] = data
	}

	key := keyPrefix + sessionID
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, vals...)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

var _ rag.SessionStore = (*RedisStore)(nil)
