// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ckp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	backend "github.com/redis/go-redis/v9"
)

// noExpiry is the index score of checkpoints without TTL (2100-01-01)
const noExpiry = 4102444800

// RedisStore saves checkpoints in Redis. Keys are indexed in a sorted set whose scores are the
// expiration times; expired entries are pruned by List.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithTTL sets the expiration of checkpoints
func WithTTL(ttl time.Duration) RedisOption {
	return func(o *RedisStore) {
		o.ttl = ttl
	}
}

// WithPrefix sets the prefix of keys
func WithPrefix(prefix string) RedisOption {
	return func(o *RedisStore) {
		o.prefix = prefix
	}
}

// NewRedisStore returns a new store connected to a Redis server
func NewRedisStore(address, password string, db int, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(client, opts...)
}

// NewRedisStoreFromClient returns a new store using an existing client
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	o := &RedisStore{client: client, prefix: "hyrax:ckp:"}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Save saves checkpoint and adds it to the index
func (o *RedisStore) Save(ctx context.Context, key string, cp *Checkpoint) (err error) {
	data, err := json.Marshal(cp)
	if err != nil {
		return chk.Err("cannot marshal checkpoint %q: %w", key, err)
	}
	score := float64(time.Now().Add(o.ttl).Unix())
	if o.ttl == 0 {
		score = noExpiry
	}
	pipe := o.client.Pipeline()
	pipe.Set(ctx, o.key(key), data, o.ttl)
	pipe.ZAdd(ctx, o.indexKey(), backend.Z{Score: score, Member: key})
	_, err = pipe.Exec(ctx)
	if err != nil {
		return chk.Err("cannot save checkpoint %q to redis: %w", key, err)
	}
	return
}

// Load loads checkpoint
func (o *RedisStore) Load(ctx context.Context, key string) (cp *Checkpoint, err error) {
	val, err := o.client.Get(ctx, o.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, chk.Err("cannot get checkpoint %q from redis: %w", key, err)
	}
	cp = new(Checkpoint)
	err = json.Unmarshal(val, cp)
	if err != nil {
		return nil, chk.Err("cannot unmarshal checkpoint %q: %w", key, err)
	}
	return
}

// List prunes expired entries of the index and returns the remaining keys
func (o *RedisStore) List(ctx context.Context) (keys []string, err error) {
	now := io.Sf("%d", time.Now().Unix())
	err = o.client.ZRemRangeByScore(ctx, o.indexKey(), "-inf", now).Err()
	if err != nil {
		return nil, chk.Err("cannot prune expired checkpoints: %w", err)
	}
	keys, err = o.client.ZRange(ctx, o.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, chk.Err("cannot list checkpoints: %w", err)
	}
	return
}

// Delete deletes checkpoint and removes it from the index
func (o *RedisStore) Delete(ctx context.Context, key string) (err error) {
	pipe := o.client.Pipeline()
	del := pipe.Del(ctx, o.key(key))
	pipe.ZRem(ctx, o.indexKey(), key)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return chk.Err("cannot delete checkpoint %q: %w", key, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return
}

// Close closes the client
func (o *RedisStore) Close() error {
	return o.client.Close()
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

func (o *RedisStore) key(key string) string {
	return o.prefix + key
}

func (o *RedisStore) indexKey() string {
	return o.prefix + "index"
}
