package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	repo "toyshop/internal/repository"
	"toyshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const toysJSON = `[
  {"toyId": 1, "name": "Zoo Puzzle", "price": 1200, "targetGroup": "svi",
   "type": {"typeId": 1, "name": "Slagalica"}, "ageGroup": {"ageGroupId": 1, "name": "3-5"}},
  {"toyId": 2, "name": "Race Car", "price": 2500.5, "targetGroup": "decak", "imageUrl": "https://cdn.example/2.jpg"}
]`

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListToys(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/toy/", r.URL.Path)
		_, _ = io.WriteString(w, toysJSON)
	})
	c := NewClient(srv.URL+"/api/", time.Second, zap.NewNop())

	toys, err := c.ListToys(context.Background())
	require.NoError(t, err)
	require.Len(t, toys, 2)

	assert.Equal(t, "Zoo Puzzle", toys[0].Name)
	assert.Equal(t, "1200", toys[0].Price.String())
	assert.Equal(t, "Slagalica", toys[0].Type.Name)
	assert.Equal(t, "https://toy.pequla.com/img/1.png", toys[0].ImageURL)
	assert.Equal(t, "https://cdn.example/2.jpg", toys[1].ImageURL)
	assert.Equal(t, "2500.5", toys[1].Price.String())
}

func TestClient_ToysByIDsPostsIDs(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/toy/list", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var ids []int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
		assert.Equal(t, []int64{2, 1}, ids)
		_, _ = io.WriteString(w, toysJSON)
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop(), WithImageBaseURL("http://img.local/"))

	toys, err := c.ToysByIDs(context.Background(), []int64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, "http://img.local/1.png", toys[0].ImageURL)

	empty, err := c.ToysByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestClient_GetToyAndTypes(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/toy/1":
			_, _ = io.WriteString(w, `{"toyId": 1, "name": "Zoo Puzzle", "price": 10}`)
		case "/type/":
			_, _ = io.WriteString(w, `[{"typeId": 1, "name": "Slagalica"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop())

	toy, err := c.GetToy(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), toy.ToyID)

	types, err := c.ListTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Slagalica", types[0].Name)

	_, err = c.GetToy(context.Background(), 99)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// 200以外は成功扱いにしない
func TestClient_NonOKStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop())

	_, err := c.ListTypes(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop(), WithFailureThreshold(2))

	for i := 0; i < 2; i++ {
		_, err := c.ListTypes(context.Background())
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	}

	_, err := c.ListTypes(context.Background())
	assert.ErrorIs(t, err, usecase.ErrCatalogUnavailable)
	assert.Equal(t, int32(2), hits.Load())
}

// 404ではブレーカーは開かない
func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop(), WithFailureThreshold(1))

	for i := 0; i < 3; i++ {
		_, err := c.GetToy(context.Background(), 5)
		assert.ErrorIs(t, err, repo.ErrNotFound)
	}
}

// 呼び出し側のキャンセルではブレーカーは開かない
func TestClient_CanceledCallerDoesNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"toyId": 1, "name": "Zoo Puzzle", "price": 10}`)
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop(), WithFailureThreshold(2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := c.GetToy(ctx, 1)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, int32(0), hits.Load())

	toy, err := c.GetToy(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), toy.ToyID)
}

// リクエスト中にキャンセルされても失敗に数えない
func TestClient_CanceledInFlightDoesNotTripBreaker(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = io.WriteString(w, `{"toyId": 1, "name": "Zoo Puzzle", "price": 10}`)
	})
	c := NewClient(srv.URL, time.Second, zap.NewNop(), WithFailureThreshold(1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetToy(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	_, err = c.GetToy(context.Background(), 1)
	assert.NotErrorIs(t, err, usecase.ErrCatalogUnavailable)
	assert.NoError(t, err)
}

// 一覧の共有リクエストは最初の呼び出し側がキャンセルしても他の待ち手に結果を返す
func TestClient_ListToysSurvivesFirstCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var hits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(started)
		}
		<-release
		_, _ = io.WriteString(w, toysJSON)
	})
	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.ListToys(firstCtx)
		firstErr <- err
	}()
	<-started

	secondRes := make(chan error, 1)
	go func() {
		toys, err := c.ListToys(context.Background())
		if err == nil && len(toys) != 2 {
			err = assert.AnError
		}
		secondRes <- err
	}()

	//2人目が同じリクエストに合流するのを待つ
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.NoError(t, <-secondRes)
	assert.Equal(t, int32(1), hits.Load())
}
