package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/mroshb/kudos/pkg/response"
)

// RateLimiter implements a fixed-window in-memory rate limiter keyed by
// client IP and by authenticated user.
type RateLimiter struct {
	userLimits map[string]*window
	ipLimits   map[string]*window
	mu         sync.Mutex

	userMaxRequests int
	ipMaxRequests   int
	window          time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	requests  int
	resetTime time.Time
}

// NewRateLimiter creates a new rate limiter. Close stops its cleanup loop.
func NewRateLimiter(userMaxRequests, ipMaxRequests int, windowSize time.Duration) *RateLimiter {
	rl := &RateLimiter{
		userLimits:      make(map[string]*window),
		ipLimits:        make(map[string]*window),
		userMaxRequests: userMaxRequests,
		ipMaxRequests:   ipMaxRequests,
		window:          windowSize,
		stop:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// CheckUserLimit checks if user has exceeded rate limit
func (rl *RateLimiter) CheckUserLimit(userID string) bool {
	return rl.allow(rl.userLimits, userID, rl.userMaxRequests)
}

// CheckIPLimit checks if IP has exceeded rate limit
func (rl *RateLimiter) CheckIPLimit(ip string) bool {
	return rl.allow(rl.ipLimits, ip, rl.ipMaxRequests)
}

func (rl *RateLimiter) allow(limits map[string]*window, key string, max int) bool {
	if max <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	limit, exists := limits[key]
	if !exists || now.After(limit.resetTime) {
		limits[key] = &window{
			requests:  1,
			resetTime: now.Add(rl.window),
		}
		return true
	}

	if limit.requests >= max {
		return false
	}

	limit.requests++
	return true
}

// GetUserRemaining returns remaining requests for user
func (rl *RateLimiter) GetUserRemaining(userID string) int {
	return rl.remaining(rl.userLimits, userID, rl.userMaxRequests)
}

// GetIPRemaining returns remaining requests for IP
func (rl *RateLimiter) GetIPRemaining(ip string) int {
	return rl.remaining(rl.ipLimits, ip, rl.ipMaxRequests)
}

func (rl *RateLimiter) remaining(limits map[string]*window, key string, max int) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit, exists := limits[key]
	if !exists || time.Now().After(limit.resetTime) {
		return max
	}

	remaining := max - limit.requests
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup removes expired entries
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep(time.Now())
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, limit := range rl.userLimits {
		if now.After(limit.resetTime) {
			delete(rl.userLimits, key)
		}
	}
	for key, limit := range rl.ipLimits {
		if now.After(limit.resetTime) {
			delete(rl.ipLimits, key)
		}
	}
}

func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}

func setRemaining(w http.ResponseWriter, remaining, max int) {
	if max > 0 {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	}
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	response.Error(w, errors.New(errors.ErrCodeRateLimitExceeded, "Too many requests, slow down"))
}

// LimitIP rejects requests from a client IP over its window budget.
func (rl *RateLimiter) LimitIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.CheckIPLimit(ip) {
			logger.Warn("IP rate limit exceeded", "ip", ip, "path", r.URL.Path)
			tooManyRequests(w, rl.window)
			return
		}
		setRemaining(w, rl.GetIPRemaining(ip), rl.ipMaxRequests)
		next.ServeHTTP(w, r)
	})
}

// LimitUser rejects requests from the authenticated user over its window
// budget. Anonymous requests pass through.
func (rl *RateLimiter) LimitUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !rl.CheckUserLimit(user.ID.String()) {
			logger.Warn("User rate limit exceeded", "user_id", user.ID, "path", r.URL.Path)
			tooManyRequests(w, rl.window)
			return
		}
		setRemaining(w, rl.GetUserRemaining(user.ID.String()), rl.userMaxRequests)
		next.ServeHTTP(w, r)
	})
}

// clientIP expects RemoteAddr to be rewritten by a trusted real-IP
// middleware when running behind a proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
