package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	repo "toyshop/internal/repository"

	"go.uber.org/zap"
)

// キーを読み込んでdstへ。
// 壊れたJSONはログに出して空扱い（エラーにしない）。読み込み自体の失敗だけ返す。
func loadJSON[T any](ctx context.Context, kv repo.KVStore, key string, logger *zap.Logger) ([]T, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("stored data is malformed, starting empty", zap.String("key", key), zap.Error(err))
		return []T{}, nil
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// キーと値のセット
type kvDoc struct {
	key   string
	value any
}

// 複数キーを1トランザクションで丸ごと書き換える
func saveJSON(ctx context.Context, kv repo.KVStore, docs ...kvDoc) error {
	encoded := make([][]byte, len(docs))
	for i, d := range docs {
		b, err := json.Marshal(d.value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.key, err)
		}
		encoded[i] = b
	}

	err := kv.WithinTx(ctx, func(w repo.KVWriter) error {
		for i, d := range docs {
			if err := w.Put(ctx, d.key, encoded[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
