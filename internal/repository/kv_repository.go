package repository

import "context"

// キーごとにJSONドキュメントを丸ごと保存するストア。
// 値は毎回まるごと書き換える（差分書き込みはしない）。
type KVStore interface {
	TransactionManager

	// 無ければ ok=false
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
}
