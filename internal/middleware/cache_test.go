package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
	appErrors "github.com/ruchikageeminda97/tms-api/pkg/errors"
)

type recordingCache struct {
	deletedPatterns []string
}

func (c *recordingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (c *recordingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *recordingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deletedPatterns = append(c.deletedPatterns, pattern)
	return nil
}

func newInvalidationRouter(cache *recordingCache, status int) *gin.Engine {
	stats := service.NewStatsService(nil, nil, nil, nil, cache,
		nil, config.StatsConfig{CacheEnabled: true, CacheTTL: time.Minute}, zap.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(InvalidateStatsCache(stats))
	handler := func(c *gin.Context) { c.Status(status) }
	r.GET("/things", handler)
	r.POST("/things", handler)
	return r
}

func TestInvalidateStatsCacheAfterWrite(t *testing.T) {
	cache := &recordingCache{}
	r := newInvalidationRouter(cache, http.StatusCreated)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))

	assert.Equal(t, []string{"stats:*"}, cache.deletedPatterns)
}

func TestInvalidateStatsCacheSkipsReads(t *testing.T) {
	cache := &recordingCache{}
	r := newInvalidationRouter(cache, http.StatusOK)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things", nil))

	assert.Empty(t, cache.deletedPatterns)
}

func TestInvalidateStatsCacheSkipsFailedWrites(t *testing.T) {
	cache := &recordingCache{}
	r := newInvalidationRouter(cache, http.StatusConflict)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/things", nil))

	assert.Empty(t, cache.deletedPatterns)
}
