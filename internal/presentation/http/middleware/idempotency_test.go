package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/salespos-api/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postWithKey(router *gin.Engine, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyKeyHeader, key)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRejectsRetryWhileFirstRequestRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewIdempotencyRepository(repository.NewMemoryRecordStore())

	var calls atomic.Int32
	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	router := gin.New()
	router.POST("/transactions", Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		calls.Add(1)
		entered <- struct{}{}
		<-release
		c.JSON(http.StatusCreated, gin.H{"id": "tx-1"})
	})

	const body = `{"payment_mode":"full"}`
	first := make(chan *httptest.ResponseRecorder)
	go func() { first <- postWithKey(router, "/transactions", "till-1-0001", body) }()
	<-entered

	retry := postWithKey(router, "/transactions", "till-1-0001", body)
	assert.Equal(t, http.StatusConflict, retry.Code)

	close(release)
	w := <-first
	require.Equal(t, http.StatusCreated, w.Code)

	replay := postWithKey(router, "/transactions", "till-1-0001", body)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, w.Body.String(), replay.Body.String())

	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := repository.NewIdempotencyRepository(repository.NewMemoryRecordStore())

	var calls atomic.Int32
	router := gin.New()
	router.POST("/transactions", Idempotency(IdempotencyConfig{Repo: repo}), func(c *gin.Context) {
		if calls.Add(1) == 1 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "store busy"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": "tx-2"})
	})

	assert.Equal(t, http.StatusServiceUnavailable, postWithKey(router, "/transactions", "k", `{}`).Code)
	assert.Equal(t, http.StatusCreated, postWithKey(router, "/transactions", "k", `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, postWithKey(router, "/transactions", "k", `{"x":1}`).Code)
	assert.Equal(t, int32(2), calls.Load())
}
