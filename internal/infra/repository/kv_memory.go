package repository

import (
	"context"
	"sync"

	repo "toyshop/internal/repository"
)

// プロセス内のKV（テスト・ローカル開発用）
type KVMemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewKVMemoryRepository() *KVMemoryRepository {
	return &KVMemoryRepository{data: map[string][]byte{}}
}

func (r *KVMemoryRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// fnの書き込みはバッファして、成功したときだけ反映
func (r *KVMemoryRepository) WithinTx(ctx context.Context, fn func(w repo.KVWriter) error) error {
	w := &stagedWriter{}
	if err := fn(w); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range w.ops {
		if op.del {
			delete(r.data, op.key)
			continue
		}
		r.data[op.key] = op.value
	}
	return nil
}

type stagedOp struct {
	key   string
	value []byte
	del   bool
}

// コミットまで書き込みを溜めておく
type stagedWriter struct {
	ops []stagedOp
}

func (w *stagedWriter) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	w.ops = append(w.ops, stagedOp{key: key, value: v})
	return nil
}

func (w *stagedWriter) Delete(_ context.Context, key string) error {
	w.ops = append(w.ops, stagedOp{key: key, del: true})
	return nil
}
