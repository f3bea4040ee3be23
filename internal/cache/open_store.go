package cache

import (
	"context"
	"fmt"
)

type StoreKind string

const (
	StoreNone   StoreKind = "none"
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
	StoreLibsql StoreKind = "libsql"
	StoreRedis  StoreKind = "redis"
)

type StoreOptions struct {
	Kind StoreKind `json:"kind"`
	// File is the json file for StoreFile and the database file for
	// StoreSQLite.
	File      string       `json:"file"`
	URL       string       `json:"url"`
	AuthToken string       `json:"auth_token"`
	Name      string       `json:"name"`
	Redis     RedisOptions `json:"redis"`
}

// OpenStore builds the store selected by opts.Kind, closer releases whatever
// connection the store holds and is never nil.
func OpenStore(ctx context.Context, opts StoreOptions) (store Store, closer func() error, err error) {
	nop := func() error { return nil }

	switch opts.Kind {
	case "", StoreNone:
		return NopStore{}, nop, nil
	case StoreFile:
		fileStore, err := NewFileStore(opts.File)
		if err != nil {
			return nil, nil, err
		}
		return fileStore, nop, nil
	case StoreSQLite, StoreLibsql:
		sqlOpts := SQLOptions{File: opts.File, Name: opts.Name}
		if opts.Kind == StoreLibsql {
			if opts.URL == "" {
				return nil, nil, fmt.Errorf("libsql store needs a url")
			}
			sqlOpts.URL = opts.URL
			sqlOpts.AuthToken = opts.AuthToken
		}
		db, err := OpenSQLDB(sqlOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s store: %w", opts.Kind, err)
		}
		sqlStore, err := NewSQLStore(ctx, db, opts.Name)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlStore, db.Close, nil
	case StoreRedis:
		if opts.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis store needs an addr")
		}
		redisStore := NewRedisStore(opts.Redis)
		err := redisStore.client.Ping(ctx).Err()
		if err != nil {
			redisStore.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", opts.Redis.Addr, err)
		}
		return redisStore, redisStore.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}
