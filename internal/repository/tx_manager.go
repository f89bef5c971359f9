package repository

import "context"

// トランザクション内で使う書き込みの約束。
// WithinTx の fn が nil を返したときだけまとめて反映される。
type KVWriter interface {
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(w KVWriter) error) error
}
