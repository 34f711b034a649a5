package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mehmet-raif33/ulasfleet/internal/common"
)

// RedisStore keeps the credential under a single redis key so sessions in
// separate processes share it. No TTL is set: expiry is a property of the
// credential, evaluated by its holder, not by the store.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore builds a store writing under "<prefix>:credential".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	value, err := s.rdb.Get(ctx, s.key(common.CredentialKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	var c Credential
	if err := json.Unmarshal(value, &c); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c Credential) error {
	value, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(common.CredentialKey), value, 0).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	keys := []string{s.key(common.CredentialKey), s.key(common.FabPositionKey)}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
