package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ukydev/pantry-finder/internal/auth"
	"github.com/ukydev/pantry-finder/internal/models"
)

// SessionContextKey is the gin context key holding *models.SessionClaims.
const SessionContextKey = "session"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates session tokens and adds the session claims to the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.authService.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(SessionContextKey, claims)
		c.Next()
	}
}

// GetSessionFromContext extracts session claims from the gin context
func GetSessionFromContext(c *gin.Context) (*models.SessionClaims, bool) {
	v, ok := c.Get(SessionContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.SessionClaims)
	return claims, ok
}

// RateLimitMiddleware provides basic rate limiting
type RateLimitMiddleware struct {
	requests map[string][]int64 // key -> timestamps
	mu       sync.Mutex
	now      func() time.Time
}

// NewRateLimitMiddleware creates a new rate limiting middleware
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]int64),
		now:      time.Now,
	}
}

// RateLimit allows at most maxRequests per client within windowSeconds. Clients are
// keyed by session when authenticated, by IP otherwise.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if claims, ok := GetSessionFromContext(c); ok {
			key = "session:" + claims.SessionID
		}

		if !m.allow(key, maxRequests, windowSeconds) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) allow(key string, maxRequests int, windowSeconds int) bool {
	now := m.now().Unix()
	windowStart := now - int64(windowSeconds)

	m.mu.Lock()
	defer m.mu.Unlock()

	// Clean old requests outside the window
	var valid []int64
	for _, ts := range m.requests[key] {
		if ts > windowStart {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= maxRequests {
		m.requests[key] = valid
		return false
	}
	m.requests[key] = append(valid, now)
	return true
}
