package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"sync"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ReviewsKey = "user-reviews"

	defaultTopRatedLimit = 5
	minReviewsForTop     = 3
)

// 初期レビュー（デモ用データ）の読み込み元
type SeedSource interface {
	Load(ctx context.Context) ([]model.Review, error)
}

// JSONファイルから初期レビューを読む。Pathが空なら0件。
type FileSeedSource struct {
	Path string
}

func (s FileSeedSource) Load(_ context.Context) ([]model.Review, error) {
	if s.Path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed reviews: %w", err)
	}
	var out []model.Review
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode seed reviews: %w", err)
	}
	return out, nil
}

// 注文状況（ARRIVEDかどうか）を見る
type ToyOrderStatusReader interface {
	ToyOrderStatus(ctx context.Context, toyID int64) model.ToyOrderStatus
}

// 投稿者名を作るために会員を引く
type UserFinder interface {
	FindByEmail(email string) (model.User, bool)
}

// ReviewUsecase は初期レビューとユーザー投稿レビューをまとめて扱う。
type ReviewUsecase struct {
	mu     sync.Mutex
	kv     repo.KVStore
	seed   SeedSource
	orders ToyOrderStatusReader
	users  UserFinder
	idGen  IDGenerator
	clock  Clock
	log    *zap.Logger

	//初期レビューは最初に必要になったとき1回だけ読む
	sf         singleflight.Group
	seedLoaded bool
	seeded     []model.Review

	userReviews []model.Review
}

// DI
func NewReviewUsecase(
	ctx context.Context,
	kv repo.KVStore,
	seed SeedSource,
	orders ToyOrderStatusReader,
	users UserFinder,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) (*ReviewUsecase, error) {
	stored, err := loadJSON[model.Review](ctx, kv, ReviewsKey, logger)
	if err != nil {
		return nil, err
	}
	return &ReviewUsecase{
		kv:          kv,
		seed:        seed,
		orders:      orders,
		users:       users,
		idGen:       idGen,
		clock:       clock,
		log:         logger,
		userReviews: stored,
	}, nil
}

// 初期レビュー読み込み。同時に呼ばれても読み込みは1回。
// 失敗しても空で読み込み済み扱いにして再試行しない。
func (u *ReviewUsecase) ensureSeed(ctx context.Context) {
	u.mu.Lock()
	loaded := u.seedLoaded
	u.mu.Unlock()
	if loaded {
		return
	}

	_, _, _ = u.sf.Do("seed", func() (any, error) {
		u.mu.Lock()
		if u.seedLoaded {
			u.mu.Unlock()
			return nil, nil
		}
		u.mu.Unlock()

		reviews, err := u.seed.Load(ctx)
		if err != nil {
			u.log.Error("failed to load seed reviews", zap.Error(err))
			reviews = nil
		}

		u.mu.Lock()
		u.seeded = reviews
		u.seedLoaded = true
		u.mu.Unlock()
		return nil, nil
	})
}

func (u *ReviewUsecase) all(ctx context.Context) []model.Review {
	u.ensureSeed(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]model.Review, 0, len(u.seeded)+len(u.userReviews))
	out = append(out, u.seeded...)
	return append(out, u.userReviews...)
}

// おもちゃのレビュー（新しい順）
func (u *ReviewUsecase) ReviewsForToy(ctx context.Context, toyID int64) []model.Review {
	out := make([]model.Review, 0)
	for _, r := range u.all(ctx) {
		if r.ToyID == toyID {
			out = append(out, r)
		}
	}
	//日付はYYYY-MM-DDなので文字列比較でよい
	slices.SortStableFunc(out, func(a, b model.Review) int {
		return strings.Compare(b.Date, a.Date)
	})
	return out
}

// 平均評価（小数1桁）と件数。レビューなしは0。
func (u *ReviewUsecase) Rating(ctx context.Context, toyID int64) model.ToyRating {
	sum, count := 0, 0
	for _, r := range u.all(ctx) {
		if r.ToyID == toyID {
			sum += r.Rating
			count++
		}
	}
	return model.ToyRating{ToyID: toyID, AvgRating: roundAverage(sum, count), ReviewCount: count}
}

func (u *ReviewUsecase) AverageRating(ctx context.Context, toyID int64) float64 {
	return u.Rating(ctx, toyID).AvgRating
}

func (u *ReviewUsecase) ReviewCount(ctx context.Context, toyID int64) int {
	return u.Rating(ctx, toyID).ReviewCount
}

// TopRated は評価の高いおもちゃ。3件以上レビューがあるものだけ。
// 平均の高い順、同じなら件数の多い順。
func (u *ReviewUsecase) TopRated(ctx context.Context, limit int) []model.ToyRating {
	if limit <= 0 {
		limit = defaultTopRatedLimit
	}

	type stat struct{ sum, count int }
	stats := map[int64]*stat{}
	order := make([]int64, 0)
	for _, r := range u.all(ctx) {
		s, ok := stats[r.ToyID]
		if !ok {
			s = &stat{}
			stats[r.ToyID] = s
			order = append(order, r.ToyID)
		}
		s.sum += r.Rating
		s.count++
	}

	out := make([]model.ToyRating, 0, len(order))
	for _, id := range order {
		s := stats[id]
		if s.count < minReviewsForTop {
			continue
		}
		out = append(out, model.ToyRating{ToyID: id, AvgRating: roundAverage(s.sum, s.count), ReviewCount: s.count})
	}
	slices.SortStableFunc(out, func(a, b model.ToyRating) int {
		if a.AvgRating != b.AvgRating {
			if a.AvgRating > b.AvgRating {
				return -1
			}
			return 1
		}
		return b.ReviewCount - a.ReviewCount
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// 投稿者名は大文字小文字を区別しない
func (u *ReviewUsecase) HasUserReviewed(ctx context.Context, toyID int64, userName string) bool {
	for _, r := range u.all(ctx) {
		if r.ToyID == toyID && strings.EqualFold(r.UserName, userName) {
			return true
		}
	}
	return false
}

// 届いていて、まだレビューしていないときだけtrue
func (u *ReviewUsecase) CanReview(ctx context.Context, toyID int64) bool {
	author, err := u.authorName(ctx)
	if err != nil {
		return false
	}
	if u.orders.ToyOrderStatus(ctx, toyID) != model.ToyOrderStatusArrived {
		return false
	}
	return !u.HasUserReviewed(ctx, toyID, author)
}

// AddReview はログイン中ユーザーのレビューを追加する。
func (u *ReviewUsecase) AddReview(ctx context.Context, toyID int64, rating int, comment string) (model.Review, error) {
	if rating < 1 || rating > 5 {
		return model.Review{}, ErrInvalidRating
	}
	author, err := u.authorName(ctx)
	if err != nil {
		return model.Review{}, err
	}
	if u.orders.ToyOrderStatus(ctx, toyID) != model.ToyOrderStatusArrived {
		return model.Review{}, ErrReviewNotAllowed
	}
	u.ensureSeed(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()

	for _, r := range append(slices.Clone(u.seeded), u.userReviews...) {
		if r.ToyID == toyID && strings.EqualFold(r.UserName, author) {
			return model.Review{}, ErrAlreadyReviewed
		}
	}

	review := model.Review{
		ID:       u.idGen.NewID(),
		ToyID:    toyID,
		UserName: author,
		Rating:   rating,
		Comment:  strings.TrimSpace(comment),
		Date:     u.clock.Now().UTC().Format("2006-01-02"),
	}

	next := make([]model.Review, len(u.userReviews), len(u.userReviews)+1)
	copy(next, u.userReviews)
	next = append(next, review)
	if err := saveJSON(ctx, u.kv, kvDoc{key: ReviewsKey, value: next}); err != nil {
		return model.Review{}, err
	}
	u.userReviews = next

	u.log.Info("review added", zap.Int64("toy_id", toyID), zap.Int("rating", rating))
	return review, nil
}

// 投稿者名 "名前 姓の頭文字."
func (u *ReviewUsecase) authorName(ctx context.Context) (string, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", ErrUnauthorized
	}
	user, ok := u.users.FindByEmail(id.Email)
	if !ok {
		return "", ErrUnauthorized
	}
	return user.DisplayName(), nil
}

func roundAverage(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}
