package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/onchain-academy/gatekeeper/core"
	"github.com/onchain-academy/gatekeeper/internal/logging"
	"github.com/onchain-academy/gatekeeper/internal/ratelimit"
	"github.com/onchain-academy/gatekeeper/service"
)

const (
	ctxSession   = "session"
	ctxAPIKey    = "apiKey"
	ctxRequestID = "requestID"

	requestIDHeader = "X-Request-ID"
	apiKeyHeader    = "X-API-Key"
)

// CorrelationID tags every request with an ID, honoring one supplied by the
// caller so IDs survive proxy hops.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info().
			Str("request_id", c.GetString(ctxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery converts panics into 500 responses instead of killing the
// process.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.Error().
			Str("request_id", c.GetString(ctxRequestID)).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Msg("handler panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

// RateLimit rejects requests over the limiter's cap with 429 and a
// Retry-After hint. keyFn derives the counter key from the request.
func RateLimit(limiter *ratelimit.Limiter, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := limiter.Allow(keyFn(c))
		if !res.Allowed {
			seconds := int((res.RetryAfter + time.Second - 1) / time.Second)
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// SessionAuth validates a wallet session bearer token and stores the
// session in the request context.
func SessionAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		session := auth.VerifyAccessToken(token)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxSession, session)
		c.Next()
	}
}

// AdminAuth admits admin bearer tokens and admin API keys. An API key in
// X-API-Key takes precedence over the Authorization header. A valid
// credential with a non-admin role gets 403 rather than 401.
func AdminAuth(admin *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(apiKeyHeader); key != "" {
			record := admin.AuthenticateAPIKey(c.Request.Context(), key)
			if record == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			if record.Role != core.RoleAdmin {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
				return
			}
			c.Set(ctxAPIKey, record)
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		session := admin.VerifyToken(token)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if session.Role != string(core.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		c.Set(ctxSession, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func sessionFrom(c *gin.Context) *core.Session {
	value, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	session, _ := value.(*core.Session)
	return session
}
