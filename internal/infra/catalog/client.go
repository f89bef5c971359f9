package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"toyshop/internal/domain/model"
	repo "toyshop/internal/repository"
	"toyshop/internal/usecase"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 200以外は全部これ
var ErrUnexpectedStatus = errors.New("catalog: unexpected status")

// 呼び出し側のctxが終わって中断した（APIの失敗には数えない）
var errCallerGone = errors.New("catalog: caller gone")

const DefaultImageBaseURL = "https://toy.pequla.com/img"

// おもちゃAPIのクライアント。
// 呼び出しはサーキットブレーカー経由（APIが落ちている間はすぐ失敗させる）。
type Client struct {
	baseURL      string
	imageBaseURL string
	http         *http.Client
	cb           *gobreaker.CircuitBreaker[[]byte]
	sf           singleflight.Group
	log          *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithImageBaseURL(u string) Option {
	return func(c *Client) { c.imageBaseURL = strings.TrimRight(u, "/") }
}

// 連続失敗でOPENにする回数
func WithFailureThreshold(n uint32) Option {
	return func(c *Client) { c.cb = newBreaker(n, c.log) }
}

// DI
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: DefaultImageBaseURL,
		http:         &http.Client{Timeout: timeout},
		log:          logger,
	}
	c.cb = newBreaker(5, logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(failures uint32, logger *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "toy-catalog",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 404と呼び出し側の中断は「APIは生きている」扱い
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repo.ErrNotFound) || errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (c *Client) ListToys(ctx context.Context) ([]model.Toy, error) {
	//同時に来た一覧取得は1回のリクエストにまとめる。
	//共有のリクエストは最初の呼び出し側がキャンセルしても続ける（上限はhttp.ClientのTimeout）
	flightCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan("toys", func() (any, error) {
		var toys []model.Toy
		if err := c.call(flightCtx, http.MethodGet, "/toy/", nil, &toys); err != nil {
			return nil, err
		}
		return toys, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return c.withImages(res.Val.([]model.Toy)), nil
	}
}

func (c *Client) GetToy(ctx context.Context, toyID int64) (model.Toy, error) {
	var toy model.Toy
	if err := c.call(ctx, http.MethodGet, "/toy/"+strconv.FormatInt(toyID, 10), nil, &toy); err != nil {
		return model.Toy{}, err
	}
	return c.withImage(toy), nil
}

func (c *Client) ToysByIDs(ctx context.Context, ids []int64) ([]model.Toy, error) {
	if len(ids) == 0 {
		return []model.Toy{}, nil
	}
	body, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	var toys []model.Toy
	if err := c.call(ctx, http.MethodPost, "/toy/list", body, &toys); err != nil {
		return nil, err
	}
	return c.withImages(toys), nil
}

func (c *Client) ListTypes(ctx context.Context) ([]model.ToyType, error) {
	var types []model.ToyType
	if err := c.call(ctx, http.MethodGet, "/type/", nil, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (c *Client) call(ctx context.Context, method, path string, body []byte, dst any) error {
	//終わったctxではブレーカーを通さない
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := c.cb.Execute(func() ([]byte, error) {
		raw, err := c.do(ctx, method, path, body)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, ctx.Err())
		}
		return raw, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", usecase.ErrCatalogUnavailable, err)
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	switch {
	case res.StatusCode == http.StatusOK:
		return raw, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, repo.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: %s %s -> %d", ErrUnexpectedStatus, method, path, res.StatusCode)
	}
}

func (c *Client) withImages(toys []model.Toy) []model.Toy {
	out := make([]model.Toy, len(toys))
	for i, t := range toys {
		out[i] = c.withImage(t)
	}
	return out
}

// 画像URLが無ければ /img/{id}.png
func (c *Client) withImage(t model.Toy) model.Toy {
	if t.ImageURL == "" {
		t.ImageURL = fmt.Sprintf("%s/%d.png", c.imageBaseURL, t.ToyID)
	}
	return t
}
