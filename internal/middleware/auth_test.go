package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/pantry-finder/internal/auth"
	"github.com/ukydev/pantry-finder/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := auth.NewService("test-secret", time.Hour)
	middleware := NewAuthMiddleware(authService)

	newRouter := func(handlerCalled *bool) *gin.Engine {
		router := gin.New()
		router.Use(middleware.Authenticate())
		router.GET("/api/view", func(c *gin.Context) {
			*handlerCalled = true
			claims, ok := GetSessionFromContext(c)
			if assert.True(t, ok) {
				assert.Equal(t, "session-1", claims.SessionID)
			}
			c.Status(http.StatusOK)
		})
		return router
	}

	// Test successful authentication
	t.Run("valid token", func(t *testing.T) {
		token, _ := authService.GenerateToken("session-1")

		req := httptest.NewRequest("GET", "/api/view", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		newRouter(&handlerCalled).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	// Test missing authorization header
	t.Run("missing authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/view", nil)
		w := httptest.NewRecorder()

		handlerCalled := false
		newRouter(&handlerCalled).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authorization header required")
	})

	// Test invalid token
	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/view", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")
		w := httptest.NewRecorder()

		handlerCalled := false
		newRouter(&handlerCalled).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), auth.ErrInvalidToken.Error())
	})

	// Test token from another server
	t.Run("foreign token", func(t *testing.T) {
		token, _ := auth.NewService("other-secret", time.Hour).GenerateToken("session-1")

		req := httptest.NewRequest("GET", "/api/view", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		newRouter(&handlerCalled).ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()

	newRouter := func(limit int, handlerCalled *bool) *gin.Engine {
		router := gin.New()
		router.POST("/api/refresh", middleware.RateLimit(limit, 60), func(c *gin.Context) {
			*handlerCalled = true
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/refresh", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		newRouter(5, &handlerCalled).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		handlerCalled := false
		router := newRouter(1, &handlerCalled)

		req := httptest.NewRequest("POST", "/api/refresh", nil)
		req.RemoteAddr = "192.168.1.2:12345"

		// First request should succeed
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		// Second request should be rate limited
		w = httptest.NewRecorder()
		handlerCalled = false
		router.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		// Other clients are unaffected
		other := httptest.NewRequest("POST", "/api/refresh", nil)
		other.RemoteAddr = "192.168.1.3:12345"
		w = httptest.NewRecorder()
		router.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimitMiddleware_WindowAndSessionKey(t *testing.T) {
	middleware := NewRateLimitMiddleware()
	now := time.Unix(1_700_000_000, 0)
	middleware.now = func() time.Time { return now }

	router := gin.New()
	router.POST("/api/refresh", func(c *gin.Context) {
		c.Set(SessionContextKey, &models.SessionClaims{SessionID: c.Query("s")})
		c.Next()
	}, middleware.RateLimit(1, 60), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(session string) int {
		req := httptest.NewRequest("POST", "/api/refresh?s="+session, nil)
		req.RemoteAddr = "10.0.0.1:1000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"), "sessions behind one IP are limited separately")

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, send("a"))
}

func TestGetSessionFromContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetSessionFromContext(c)
	assert.False(t, ok)

	c.Set(SessionContextKey, "not claims")
	_, ok = GetSessionFromContext(c)
	assert.False(t, ok)

	claims := &models.SessionClaims{SessionID: "session-1"}
	c.Set(SessionContextKey, claims)
	got, ok := GetSessionFromContext(c)
	require.True(t, ok)
	assert.Equal(t, claims, got)
}
