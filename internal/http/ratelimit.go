package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/http/common"
)

// rateLimitMiddleware budgets requests per actor within a fixed window.
// Limiter errors fail open.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.cfg.RateLimitRequests <= 0 {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if actor, ok := common.MaybeActor(c); ok && actor.ID != "" {
			key = "actor:" + actor.ID
		}
		decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.cfg.RateLimitRequests, s.cfg.RateLimitWindow)
		if err != nil {
			c.Next()
			return
		}
		writeRateLimitHeaders(c, decision)
		if !decision.Allowed {
			common.WriteErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}
		c.Next()
	}
}

func writeRateLimitHeaders(c *gin.Context, decision custody.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
