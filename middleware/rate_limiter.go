package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"indastreet/config"
	"indastreet/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const rateLimitWindow = time.Minute

// rateLimiterStore holds a map of IP addresses to their rate limiters.
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

var limiterStore = &rateLimiterStore{
	limiters: make(map[string]*rate.Limiter),
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *rateLimiterStore) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ip]
	if !exists {
		perMin := maxRequestsPerMin()
		limiter = rate.NewLimiter(rate.Every(rateLimitWindow/time.Duration(perMin)), perMin)
		s.limiters[ip] = limiter
	}
	return limiter
}

func maxRequestsPerMin() int {
	perMin := config.AppConfig.MaxRequestsPerMin
	if perMin <= 0 {
		perMin = 100
	}
	return perMin
}

// allowRequest counts the request against a fixed per-IP window in the shared
// Redis cache, so the limit holds across instances. When Redis is unreachable
// the in-process limiter takes over for that request.
func allowRequest(ctx context.Context, ip string) bool {
	cache := utils.GetCacheClient()
	key := "ratelimit:" + ip

	count, err := cache.Incr(ctx, key).Result()
	if err != nil {
		zap.L().Warn("rate limiter falling back to in-process state", zap.Error(err))
		return limiterStore.getLimiter(ip).Allow()
	}
	if count == 1 {
		cache.Expire(ctx, key, rateLimitWindow)
	}
	return count <= int64(maxRequestsPerMin())
}

// RateLimitMiddleware limits requests per IP address.
func RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !allowRequest(c.Request.Context(), ip) {
			zap.L().Warn("Rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
