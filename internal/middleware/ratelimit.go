package middleware

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter manages per-IP rate limiting
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
	}
}

// GetLimiter returns the rate limiter for a given IP
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	limiter, exists := l.limiters.Load(ip)
	if !exists {
		newLimiter := rate.NewLimiter(l.rate, l.burst)
		l.limiters.Store(ip, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

// DailyQuota manages global daily request quota
type DailyQuota struct {
	count   int64
	limit   int64
	resetAt time.Time
	mu      sync.Mutex
}

// NewDailyQuota creates a new daily quota manager
func NewDailyQuota(limit int64) *DailyQuota {
	return &DailyQuota{
		limit:   limit,
		resetAt: nextMidnightUTC(),
	}
}

// Allow checks if a request is allowed and increments the counter
func (q *DailyQuota) Allow() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if time.Now().After(q.resetAt) {
		log.Printf("[QUOTA] Daily quota reset. Previous count: %d", q.count)
		q.count = 0
		q.resetAt = nextMidnightUTC()
	}

	if q.count >= q.limit {
		return false
	}
	q.count++
	return true
}

// Remaining returns the remaining quota
func (q *DailyQuota) Remaining() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit - q.count
}

// Count returns the current count
func (q *DailyQuota) Count() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// nextMidnightUTC returns the next midnight in UTC
func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}

// RateLimitMiddleware applies two checks in order: the global daily quota,
// then the per-IP token bucket. Either failure returns 429 with Retry-After.
func RateLimitMiddleware(ipLimiter *IPRateLimiter, quota *DailyQuota) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !quota.Allow() {
			retryAfter := time.Until(nextMidnightUTC())
			log.Printf("[QUOTA] Daily quota exhausted (count=%d)", quota.Count())
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Daily request quota exceeded. Please come back tomorrow.",
				"code":  "QUOTA_EXCEEDED",
			})
			return
		}

		if !ipLimiter.GetLimiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
				"code":  "RATE_LIMITED",
			})
			return
		}

		c.Next()
	}
}
