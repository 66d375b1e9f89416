package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kientrucanlac/anlac/pkg/apiclient"
	"github.com/kientrucanlac/anlac/pkg/session"
)

const handleKey = "anlac.session"

var _ apiclient.Session = (*session.Handle)(nil)

// securityHeaders sets standard security response headers.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		c.Next()
	}
}

// requestLogger logs one line per request at Info, or Warn for 5xx.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// visitorSession resolves the visitor from the session cookie, starting a new
// session when the cookie is missing or stale, and stores a request-scoped
// Handle on the context. The cookie is re-issued on every request so its
// Max-Age slides with the server-side idle TTL.
func (s *Server) visitorSession() gin.HandlerFunc {
	cookie := s.cfg.Sessions.CookieName
	maxAge := int(s.cfg.Sessions.IdleTTL / time.Second)
	secure := s.cfg.Sessions.SecureCookie

	return func(c *gin.Context) {
		id, _ := c.Cookie(cookie)
		v, _ := s.sessions.GetOrCreate(id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie, v.ID, maxAge, "/", "", secure, true)
		c.Set(handleKey, s.sessions.Bind(c.Request.Context(), v))
		c.Next()
	}
}

func handleFrom(c *gin.Context) *session.Handle {
	return c.MustGet(handleKey).(*session.Handle)
}

// rateLimit throttles chat calls per client IP with a Redis token bucket
// (capacity 2*qps, refilled at qps per second). It is a no-op without Redis
// or when chat_qps is 0, and fails open when Redis errors.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		qps := s.cfg.RateLimit.ChatQPS
		if s.redis == nil || qps <= 0 {
			c.Next()
			return
		}

		capacity := 2 * qps
		now := float64(time.Now().UnixNano()) / 1e9
		result, err := s.redis.Eval(c.Request.Context(), rateLimitScript,
			[]string{s.rateLimitPrefix + c.ClientIP()},
			capacity, float64(qps), now, 1,
		).Result()
		if err != nil {
			s.logger.Warn("Rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		allowed, remaining, retryAfter := int64(0), int64(capacity), int64(0)
		if arr, ok := result.([]any); ok && len(arr) >= 3 {
			allowed, _ = arr[0].(int64)
			remaining, _ = arr[1].(int64)
			retryAfter, _ = arr[2].(int64)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(capacity))
		if allowed == 0 {
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: msgTooManyRequests})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Next()
	}
}

const rateLimitScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])
if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

tokens = math.min(capacity, tokens + math.max(0, now - updated_at) * rate)

local allowed = 0
local retry_after = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    retry_after = (requested - tokens) / rate
end

redis.call('HMSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, 3600)

return {allowed, math.floor(tokens), math.ceil(retry_after)}
`
