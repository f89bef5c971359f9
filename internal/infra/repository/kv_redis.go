package repository

import (
	"context"
	"errors"
	"fmt"

	repo "toyshop/internal/repository"

	"github.com/redis/go-redis/v9"
)

type KVRedisRepository struct {
	client *redis.Client
	prefix string
}

// prefixはキーの名前空間（例: "toyshop:"）
func NewKVRedisRepository(client *redis.Client, prefix string) *KVRedisRepository {
	return &KVRedisRepository{client: client, prefix: prefix}
}

func (r *KVRedisRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return data, true, nil
}

// MULTI/EXEC でまとめて書く
func (r *KVRedisRepository) WithinTx(ctx context.Context, fn func(w repo.KVWriter) error) error {
	w := &stagedWriter{}
	if err := fn(w); err != nil {
		return err
	}
	if len(w.ops) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range w.ops {
			if op.del {
				pipe.Del(ctx, r.prefix+op.key)
				continue
			}
			pipe.Set(ctx, r.prefix+op.key, op.value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis tx failed: %w", err)
	}
	return nil
}
