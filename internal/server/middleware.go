package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	HeaderConnectionID = "X-Connection-ID"
	contextUserIDKey   = "user_id"
)

// AuthRequired resolves the bearer token to a user and stores the user id on
// the request context. SSE clients cannot set headers, so the token is also
// accepted as an access_token query parameter.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.identityRepo.UserBySessionToken(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, user.ID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}

func (s *Server) sessionUserID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

// CommandRateLimit throttles command submissions per user. Redis outages
// fail open; throttling is protection, not an availability dependency.
func (s *Server) CommandRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		userID, ok := s.sessionUserID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		res, err := s.limiter.AllowUser(c.Request.Context(), userID.String())
		if err != nil {
			s.log.Warn("command rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

// connectionID identifies the push stream command responses are delivered to.
func connectionID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(HeaderConnectionID)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("connection_id"))
}
