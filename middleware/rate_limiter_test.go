package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"indastreet/config"
	"indastreet/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"

	"golang.org/x/time/rate"
)

// useUnreachableRedis points the cache client at a dead address so the
// limiter exercises its in-process fallback, and resets limiter state.
func useUnreachableRedis(t *testing.T, perMin int) {
	t.Helper()

	prevPerMin := config.AppConfig.MaxRequestsPerMin
	prevClient := utils.CacheClient
	config.AppConfig.MaxRequestsPerMin = perMin
	utils.CacheClient = redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 10 * time.Millisecond,
		ReadTimeout: 10 * time.Millisecond,
		MaxRetries:  -1,
	})
	limiterStore.limiters = make(map[string]*rate.Limiter)

	t.Cleanup(func() {
		config.AppConfig.MaxRequestsPerMin = prevPerMin
		utils.CacheClient = prevClient
		limiterStore.limiters = make(map[string]*rate.Limiter)
	})
}

func TestAllowRequestFallsBackWhenRedisUnavailable(t *testing.T) {
	useUnreachableRedis(t, 3)

	allowed := 0
	for i := 0; i < 5; i++ {
		if allowRequest(context.Background(), "203.0.113.9") {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)
}

func TestRateLimitMiddlewareRejectsExcessRequests(t *testing.T) {
	useUnreachableRedis(t, 2)
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "198.51.100.7:4242"
		r.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestRateLimitPerIPIsIndependent(t *testing.T) {
	useUnreachableRedis(t, 1)

	assert.True(t, allowRequest(context.Background(), "203.0.113.1"))
	assert.False(t, allowRequest(context.Background(), "203.0.113.1"))
	assert.True(t, allowRequest(context.Background(), "203.0.113.2"))
}
