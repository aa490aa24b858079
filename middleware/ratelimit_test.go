package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// newTestLimiter builds a limiter with a controllable clock and no background
// pruning goroutine.
func newTestLimiter(maxRequests int, window time.Duration) (*RateLimiter, *time.Time) {
	current := time.Now()
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		burst:    float64(maxRequests),
		refill:   float64(maxRequests) / window.Seconds(),
		now:      func() time.Time { return current },
	}
	return rl, &current
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl, _ := newTestLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		rl.allow("10.0.0.1")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("4th request should be blocked")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Second)

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.1")
	if rl.allow("10.0.0.1") {
		t.Fatal("bucket should be empty")
	}

	// A full window later the bucket is full again
	*clock = clock.Add(time.Second)
	if !rl.allow("10.0.0.1") {
		t.Fatal("bucket should have refilled")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl, _ := newTestLimiter(1, time.Minute)

	if !rl.allow("10.0.0.1") {
		t.Fatal("first client should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("first client should now be blocked")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatal("second client has its own bucket")
	}
}

func TestRateLimiterCapsBucketAtBurst(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Second)

	rl.allow("10.0.0.1")

	// Idle far longer than the window; tokens must not exceed burst
	*clock = clock.Add(time.Hour)
	for i := 0; i < 2; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed after long idle", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("bucket must be capped at burst size")
	}
}

func TestRateLimiterMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(2, time.Minute)

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/test", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", w.Code, w.Body.String())
	}
}
