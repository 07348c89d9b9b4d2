package middleware

import (
	"hotel-iot-service/internal/error/code"
	"hotel-iot-service/internal/error/response"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenBucket 简单的令牌桶限流器
type TokenBucket struct {
	rate       float64    // 每秒填充的令牌数
	capacity   int        // 桶的容量
	tokens     float64    // 当前令牌数
	lastRefill time.Time  // 上次填充时间
	mu         sync.Mutex // 互斥锁
}

// NewTokenBucket 创建新的令牌桶限流器
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow 尝试获取令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

var (
	keyLimiters   = make(map[string]*TokenBucket)
	keyLimitersMu sync.RWMutex
)

func getLimiter(key string, rate float64, burst int) *TokenBucket {
	keyLimitersMu.RLock()
	limiter, exists := keyLimiters[key]
	keyLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(rate, burst)
		keyLimitersMu.Lock()
		keyLimiters[key] = limiter
		keyLimitersMu.Unlock()
	}

	return limiter
}

// IPRateLimiter 按客户端IP限流
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := getLimiter(c.ClientIP(), rate, burst)
		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CombinedRateLimiter 按IP和路径组合限流，用于写接口
func CombinedRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + c.Request.URL.Path
		limiter := getLimiter(key, rate, burst)
		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
