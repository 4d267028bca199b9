package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vitrin/pkg/platform/sentinel"
)

const redisKeyPrefix = "profile:"

// Redis stores each profile as a JSON document under profile:<uid>. Profiles
// have no TTL; they live until an external deletion.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func redisKey(uid string) string {
	return redisKeyPrefix + uid
}

func (s *Redis) Get(ctx context.Context, uid string) (*Profile, error) {
	val, err := s.client.Get(ctx, redisKey(uid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

func (s *Redis) Create(ctx context.Context, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(p.UID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

func (s *Redis) Update(ctx context.Context, uid string, u Update) (*Profile, error) {
	p, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	p.Apply(u, time.Now())

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(uid), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis set profile: %w", err)
	}
	return p, nil
}
