package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		for i := 0; i < 5; i++ {
			assert.True(t, limiter.Allow("10.0.0.1"), "request %d should be allowed", i+1)
		}
	})

	t.Run("blocks once the window budget is spent", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("10.0.0.2"))
		}
		assert.False(t, limiter.Allow("10.0.0.2"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.True(t, limiter.Allow("10.0.0.3"))
		assert.False(t, limiter.Allow("10.0.0.3"))

		assert.True(t, limiter.Allow("10.0.0.4"))
		assert.True(t, limiter.Allow("10.0.0.4"))
	})

	t.Run("budget resets when the window rolls over", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		assert.True(t, limiter.Allow("10.0.0.5"))
		assert.True(t, limiter.Allow("10.0.0.5"))
		assert.False(t, limiter.Allow("10.0.0.5"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("10.0.0.5"))
	})

	t.Run("remaining tracks consumption", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("10.0.0.6"))

		limiter.Allow("10.0.0.6")
		limiter.Allow("10.0.0.6")

		assert.Equal(t, 3, limiter.Remaining("10.0.0.6"))
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared-key") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, allowed)
	})
}

func newRateLimitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("passes requests within limit and sets headers", func(t *testing.T) {
		router := newRateLimitedRouter(RateLimit(NewRateLimiter(3, time.Minute)))

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("returns 429 when limit exceeded", func(t *testing.T) {
		router := newRateLimitedRouter(RateLimit(NewRateLimiter(2, time.Minute)))

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("remaining header counts down", func(t *testing.T) {
		router := newRateLimitedRouter(RateLimit(NewRateLimiter(5, time.Minute)))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("organizations behind the same IP get separate budgets", func(t *testing.T) {
		router := newRateLimitedRouter(RateLimit(NewRateLimiter(1, time.Minute)))

		sendForOrg := func(org string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Org-ID", org)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		assert.Equal(t, http.StatusOK, sendForOrg("org-1").Code)
		assert.Equal(t, http.StatusTooManyRequests, sendForOrg("org-1").Code)

		// a different org on the same client IP is unaffected
		assert.Equal(t, http.StatusOK, sendForOrg("org-2").Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	keyFunc := func(c *gin.Context) string {
		return c.GetHeader("X-Client-ID")
	}
	router := newRateLimitedRouter(RateLimitByKey(limiter, keyFunc))

	send := func(clientID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Client-ID", clientID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("scanner-7").Code)
	assert.Equal(t, http.StatusTooManyRequests, send("scanner-7").Code)
	assert.Equal(t, http.StatusOK, send("scanner-8").Code)
}
