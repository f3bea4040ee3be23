package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultRedisKey = "ucsc-menu:snapshot"

const (
	redisFieldCachedAt = "cached_at"
	redisFieldData     = "data"
)

type RedisOptions struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
}

// RedisStore keeps the record as a hash with the cached_at and data fields.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(opts RedisOptions) RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisStoreFromClient(client, opts.Key)
}

func NewRedisStoreFromClient(client *redis.Client, key string) RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return RedisStore{client: client, key: key}
}

func (s RedisStore) Close() error {
	return s.client.Close()
}

func (s RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	values, err := s.client.HMGet(ctx, s.key, redisFieldCachedAt, redisFieldData).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget %s: %w", s.key, err)
	}
	// HMGet yields nil for fields of a missing key
	rawCachedAt, ok := values[0].(string)
	if !ok {
		return nil, nil
	}
	cachedAt, err := strconv.ParseInt(rawCachedAt, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s of %s: %w", redisFieldCachedAt, s.key, err)
	}

	record := Record{CachedAt: time.UnixMilli(cachedAt).UTC()}
	if data, ok := values[1].(string); ok {
		record.Data = []byte(data)
	}
	return record.Decode()
}

func (s RedisStore) Save(ctx context.Context, snapshot *Snapshot) error {
	record, err := Encode(snapshot)
	if err != nil {
		return err
	}
	err = s.client.HSet(
		ctx, s.key,
		redisFieldCachedAt, record.CachedAt.UnixMilli(),
		redisFieldData, record.Data,
	).Err()
	if err != nil {
		return fmt.Errorf("hset %s: %w", s.key, err)
	}
	return nil
}
