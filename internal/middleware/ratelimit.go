// Package middleware provides HTTP middleware for graphein.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graphein/graphein/internal/httputil"
)

const (
	// maxClients caps the tracked-IP table so unauthenticated traffic
	// cannot grow it without bound.
	maxClients = 100_000

	sweepInterval = 5 * time.Minute
	idleExpiry    = 10 * time.Minute
)

// RateLimiter applies a token bucket per client IP. Tokens refill
// continuously at the configured rate up to the burst size.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    float64
	burst   float64
}

type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec requests with the
// given burst. A sweeper goroutine evicts idle clients until ctx is cancelled.
func NewRateLimiter(ctx context.Context, ratePerSec, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		rate:    float64(ratePerSec),
		burst:   float64(burst),
	}
	go rl.sweep(ctx)

	return rl
}

func (rl *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.clients {
				if now.Sub(b.lastSeen) > idleExpiry {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow takes one token for ip. tracked is false when the client table is
// full and ip is not yet in it.
func (rl *RateLimiter) allow(ip string) (allowed, tracked bool) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[ip]
	if !ok {
		if len(rl.clients) >= maxClients {
			return false, false
		}

		rl.clients[ip] = &clientBucket{tokens: rl.burst - 1, lastSeen: now}

		return true, true
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false, true
	}

	b.tokens--

	return true, true
}

// Handler returns gin middleware enforcing the limit per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP cannot be spoofed through forwarding headers; the
		// router disables proxy header trust.
		allowed, tracked := rl.allow(c.ClientIP())

		switch {
		case !tracked:
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "too many clients")
		case !allowed:
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
		default:
			c.Next()
		}
	}
}
