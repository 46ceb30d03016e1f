package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
	"github.com/dmitrijs2005/dogspotter/internal/server/blobstore"
	"github.com/dmitrijs2005/dogspotter/internal/server/intake"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
	"github.com/dmitrijs2005/dogspotter/internal/server/policy"
	"github.com/dmitrijs2005/dogspotter/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dogspotter/internal/server/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsFunc func(ctx context.Context, identity int64) (models.Stats, error)

func (f statsFunc) LookupStats(ctx context.Context, identity int64) (models.Stats, error) {
	return f(ctx, identity)
}

func setupTestRouter(f StatsQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(f, logging.Nop())
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(setupTestRouter(nil), "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestGetUserStats(t *testing.T) {
	var gotIdentity int64
	r := setupTestRouter(statsFunc(func(ctx context.Context, identity int64) (models.Stats, error) {
		gotIdentity = identity
		return models.Stats{Total: 4, Positive: 3}, nil
	}))

	w := get(r, "/api/v1/users/123456789/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(123456789), gotIdentity)

	var body statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, statsResponse{Identity: 123456789, Total: 4, Positive: 3, Negative: 1, Percent: 75}, body)
}

func TestGetUserStats_BadIdentity(t *testing.T) {
	called := false
	r := setupTestRouter(statsFunc(func(ctx context.Context, identity int64) (models.Stats, error) {
		called = true
		return models.Stats{}, nil
	}))

	w := get(r, "/api/v1/users/bob/stats")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestGetUserStats_StoreError(t *testing.T) {
	r := setupTestRouter(statsFunc(func(ctx context.Context, identity int64) (models.Stats, error) {
		return models.Stats{}, errors.New("pq: password authentication failed")
	}))

	w := get(r, "/api/v1/users/1/stats")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}

func TestGetUserStats_UnknownUser(t *testing.T) {
	r := setupTestRouter(statsFunc(func(ctx context.Context, identity int64) (models.Stats, error) {
		return models.Stats{}, common.ErrorNotFound
	}))

	w := get(r, "/api/v1/users/7/stats")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, w.Body.String())
}

func TestGetUserStats_DoesNotCreateUsers(t *testing.T) {
	m := repomanager.NewInMemoryRepositoryManager()
	s := store.New(nil, m, logging.Nop())
	blobs, err := blobstore.NewFSStore(t.TempDir())
	require.NoError(t, err)
	dogs := classifierFunc(func(ctx context.Context, image []byte) bool { return true })
	p := intake.New(s, blobs, dogs, policy.Default(), logging.Nop())

	r := setupTestRouter(p)
	for _, id := range []string{"1", "2", "9223372036854775807"} {
		w := get(r, "/api/v1/users/"+id+"/stats")
		assert.Equal(t, http.StatusNotFound, w.Code, "identity %s", id)
	}
	assert.Equal(t, 0, m.UserCount())

	out := p.HandleSubmission(context.Background(), intake.Submission{Identity: 1, Content: []byte("dog"), Name: "photo_1.jpg"})
	require.Equal(t, intake.AcceptedWithDetection, out.Kind)

	w := get(r, "/api/v1/users/1/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"identity":1,"total":1,"positive":1,"negative":0,"percent":100}`, w.Body.String())
	assert.Equal(t, 1, m.UserCount())
}

type classifierFunc func(ctx context.Context, image []byte) bool

func (f classifierFunc) Classify(ctx context.Context, image []byte) bool {
	return f(ctx, image)
}

func TestMetrics(t *testing.T) {
	w := get(setupTestRouter(nil), "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestServer_ServeAndShutdown(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(lis.Addr().String(), setupTestRouter(nil), time.Second, logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	var res *http.Response
	require.Eventually(t, func() bool {
		res, err = http.Get("http://" + lis.Addr().String() + "/healthz")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	b, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.True(t, strings.Contains(string(b), "ok"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
