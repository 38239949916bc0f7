package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AlexMickh/speak-messenger/pkg/jwt"
	"github.com/AlexMickh/speak-messenger/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userIDKey = "userID"

// RequestLogger stamps every request with an id and swaps the request
// context for one carrying the application logger, so every layer below
// logs with the same request id.
func RequestLogger(baseCtx context.Context) gin.HandlerFunc {
	log := logger.GetFromCtx(baseCtx)

	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), logger.Key, log)
		ctx = context.WithValue(ctx, logger.RequestID, uuid.NewString())
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		logger.GetFromCtx(ctx).Info(ctx, "request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func RateLimit(rps, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}

// Auth resolves the bearer token to an existing user. A token whose
// subject no longer exists is as invalid as a forged one.
func Auth(tokens *jwt.Manager, service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := tokens.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if _, err = service.GetUserByID(c.Request.Context(), userID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func MustUserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return v.(string)
}

// requireSelf aborts unless the path subject is the authenticated user.
func requireSelf(c *gin.Context, subjectID string) bool {
	if MustUserID(c) != subjectID {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "user is not authorized to make this request",
		})
		return false
	}
	return true
}
