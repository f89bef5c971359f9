package usecase

import (
	"context"
	"sync"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"

	"go.uber.org/zap"
)

const FavoritesKey = "favorite-toys"

// お気に入りのおもちゃ。追加時点のおもちゃ情報をそのまま持つ。
type FavoriteUsecase struct {
	mu  sync.Mutex
	kv  repo.KVStore
	log *zap.Logger

	toys []model.Toy
}

// DI
func NewFavoriteUsecase(ctx context.Context, kv repo.KVStore, logger *zap.Logger) (*FavoriteUsecase, error) {
	toys, err := loadJSON[model.Toy](ctx, kv, FavoritesKey, logger)
	if err != nil {
		return nil, err
	}
	return &FavoriteUsecase{kv: kv, log: logger, toys: toys}, nil
}

// 既にあれば何もしない
func (u *FavoriteUsecase) Add(ctx context.Context, toy model.Toy) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.indexLocked(toy.ToyID) >= 0 {
		return nil
	}
	next := make([]model.Toy, len(u.toys), len(u.toys)+1)
	copy(next, u.toys)
	next = append(next, toy)
	return u.commitLocked(ctx, next)
}

// 無ければ何もしない
func (u *FavoriteUsecase) Remove(ctx context.Context, toyID int64) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.indexLocked(toyID)
	if i < 0 {
		return nil
	}
	return u.commitLocked(ctx, removeToyAt(u.toys, i))
}

// 追加/削除を切り替えて、切り替え後の状態を返す。
// 保存に失敗したら切り替え前の状態を返す。
func (u *FavoriteUsecase) Toggle(ctx context.Context, toy model.Toy) (favorite bool, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if i := u.indexLocked(toy.ToyID); i >= 0 {
		if err := u.commitLocked(ctx, removeToyAt(u.toys, i)); err != nil {
			return true, err
		}
		return false, nil
	}
	next := make([]model.Toy, len(u.toys), len(u.toys)+1)
	copy(next, u.toys)
	next = append(next, toy)
	if err := u.commitLocked(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (u *FavoriteUsecase) IsFavorite(toyID int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.indexLocked(toyID) >= 0
}

// 追加順
func (u *FavoriteUsecase) List() []model.Toy {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]model.Toy, len(u.toys))
	copy(out, u.toys)
	return out
}

func (u *FavoriteUsecase) indexLocked(toyID int64) int {
	for i, t := range u.toys {
		if t.ToyID == toyID {
			return i
		}
	}
	return -1
}

func (u *FavoriteUsecase) commitLocked(ctx context.Context, next []model.Toy) error {
	if err := saveJSON(ctx, u.kv, kvDoc{key: FavoritesKey, value: next}); err != nil {
		return err
	}
	u.toys = next
	return nil
}

func removeToyAt(toys []model.Toy, i int) []model.Toy {
	next := make([]model.Toy, 0, len(toys)-1)
	next = append(next, toys[:i]...)
	return append(next, toys[i+1:]...)
}
