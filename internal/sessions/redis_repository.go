package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps admin refresh sessions in Redis as JSON under
// "<prefix><refreshToken>", expiring together with the session.
type RedisRepository struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisRepository creates a Redis-backed session repository. An empty prefix means "session:".
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix, now: func() time.Time { return time.Now().UTC() }}
}

func (r *RedisRepository) key(refresh string) string {
	return r.prefix + refresh
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		// already expired; keep it just long enough to be rejected
		ttl = time.Second
	}
	return r.client.Set(ctx, r.key(s.RefreshToken), b, ttl).Err()
}

// decode turns a stored value into a live session; (nil, nil) for missing or expired ones.
func (r *RedisRepository) decode(b []byte, err error) (*Session, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Expired(r.now()) {
		return nil, nil
	}
	return &s, nil
}

func (r *RedisRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	s, err := r.decode(r.client.Get(ctx, r.key(refresh)).Bytes())
	if err == nil && s == nil {
		_ = r.client.Del(ctx, r.key(refresh)).Err()
	}
	return s, err
}

// Consume removes the session with GETDEL, so only one caller ever receives it.
func (r *RedisRepository) Consume(ctx context.Context, refresh string) (*Session, error) {
	return r.decode(r.client.GetDel(ctx, r.key(refresh)).Bytes())
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	return r.client.Del(ctx, r.key(refresh)).Err()
}
