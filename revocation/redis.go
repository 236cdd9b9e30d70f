package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokeScript = `
local current = redis.call("PTTL", KEYS[1])
local ttl = tonumber(ARGV[2])
if current >= ttl then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ttl)
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// RedisStore keeps one key per revoked license with a TTL equal to the
// remaining revocation window.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a [RedisStore] under keys "<prefix>:rv:<id>".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gl"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":rv:" + id
}

// Revoke stores id with a TTL of until-now. Revoking an id again only ever
// extends its window.
func (s *RedisStore) Revoke(ctx context.Context, id string, until time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Millisecond {
		ttl = time.Millisecond
	}

	err := revokeLua.Run(ctx, s.redis, []string{s.key(id)}, until.UTC().Unix(), ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the revocation key for id still exists.
func (s *RedisStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	n, err := s.redis.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
