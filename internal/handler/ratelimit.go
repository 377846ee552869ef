package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimits configures RateLimiter. Settlement writes (POST /transactions
// and POST /simulations/seasonal) draw from their own per-IP bucket, so a
// client flooding orders is throttled before it exhausts its read budget.
type RateLimits struct {
	RPS   int
	Burst int

	// SettleRPS and SettleBurst size the settlement bucket. Zero falls back
	// to RPS and Burst.
	SettleRPS   int
	SettleBurst int
}

const (
	classGeneral = "general"
	classSettle  = "settle"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a Gin middleware that enforces per-IP token-bucket
// rate limiting, with a separate bucket per request class. Entries idle for
// 10 minutes are dropped every 5 minutes until ctx is done.
func RateLimiter(ctx context.Context, limits RateLimits) gin.HandlerFunc {
	if limits.SettleRPS <= 0 {
		limits.SettleRPS = limits.RPS
	}
	if limits.SettleBurst <= 0 {
		limits.SettleBurst = limits.Burst
	}

	var mu sync.Mutex
	limiters := make(map[string]*ipLimiter)

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				for key, l := range limiters {
					if time.Since(l.lastSeen) > 10*time.Minute {
						delete(limiters, key)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(c *gin.Context) {
		class := requestClass(c)
		key := c.ClientIP() + "|" + class

		mu.Lock()
		l, ok := limiters[key]
		if !ok {
			rps, burst := limits.RPS, limits.Burst
			if class == classSettle {
				rps, burst = limits.SettleRPS, limits.SettleBurst
			}
			l = &ipLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			limiters[key] = l
		}
		l.lastSeen = time.Now()
		mu.Unlock()

		if !l.limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
				"class": class,
			})
			return
		}
		c.Next()
	}
}

func requestClass(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return classGeneral
	}
	path := c.FullPath()
	if strings.HasSuffix(path, "/transactions") || strings.HasSuffix(path, "/simulations/seasonal") {
		return classSettle
	}
	return classGeneral
}
