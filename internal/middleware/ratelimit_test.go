package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/graphein/graphein/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func limitedRouter(t *testing.T, ratePerSec, burst int) *gin.Engine {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rl := middleware.NewRateLimiter(ctx, ratePerSec, burst)

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func hit(r *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.RemoteAddr = ip + ":9000"
	r.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	r := limitedRouter(t, 1, 2)

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}

	for i, code := range want {
		if got := hit(r, "1.2.3.4"); got != code {
			t.Fatalf("request %d: expected %d, got %d", i, code, got)
		}
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	r := limitedRouter(t, 1, 1)

	if got := hit(r, "1.1.1.1"); got != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", got)
	}

	if got := hit(r, "2.2.2.2"); got != http.StatusOK {
		t.Fatalf("second client must have its own bucket, got %d", got)
	}
}

func TestRateLimiter_TokensRefill(t *testing.T) {
	// A rate this high refills within any measurable elapsed time.
	r := limitedRouter(t, 1_000_000, 2)

	hit(r, "5.5.5.5")
	hit(r, "5.5.5.5")

	if got := hit(r, "5.5.5.5"); got != http.StatusOK {
		t.Fatalf("expected refill after burst, got %d", got)
	}
}
