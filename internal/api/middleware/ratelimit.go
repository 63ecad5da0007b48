package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/metrics"
	"github.com/nithinag10/gatherly/internal/store"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	Whitelist []string // IPs or CIDRs exempt from rate limiting
}

// RateLimiter implements fixed-window rate limiting backed by Redis.
// Model-backed endpoints get the tightest limits; an unthrottled summary
// or validate endpoint is an invitation to burn the LLM budget.
type RateLimiter struct {
	redis        *store.RedisStore
	limits       map[string]RateLimit
	logger       zerolog.Logger
	whitelist    []*net.IPNet
	whitelistIPs map[string]bool
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(redis *store.RedisStore, logger zerolog.Logger, cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		redis:        redis,
		logger:       logger,
		whitelistIPs: make(map[string]bool),
		limits: map[string]RateLimit{
			"POST /register":           {10, time.Hour},
			"POST /chats":              {20, time.Hour},
			"POST /chats/:id/messages": {60, time.Minute},
			"GET /chats/:id/messages":  {120, time.Minute},
			"GET /chats/:id/summary":   {10, time.Minute},
			"GET /chats/:id/validate":  {10, time.Minute},
		},
	}

	// Parse whitelist entries
	for _, entry := range cfg.Whitelist {
		if strings.Contains(entry, "/") {
			// CIDR notation
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				logger.Warn().Str("entry", entry).Err(err).Msg("invalid CIDR in whitelist")
				continue
			}
			rl.whitelist = append(rl.whitelist, ipNet)
		} else {
			// Single IP
			rl.whitelistIPs[entry] = true
		}
	}

	if len(cfg.Whitelist) > 0 {
		logger.Info().
			Int("ips", len(rl.whitelistIPs)).
			Int("cidrs", len(rl.whitelist)).
			Msg("rate limit whitelist configured")
	}

	return rl
}

// isWhitelisted checks if an IP is in the whitelist.
func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	if rl.whitelistIPs[ipStr] {
		return true
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipNet := range rl.whitelist {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware applies rate limits to matching endpoints.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := normalizePath(r.URL.Path)
		limit, ok := rl.limits[r.Method+" "+endpoint]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ip := realIP(r)
		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}

		key := endpoint + ":" + ip
		allowed, err := rl.redis.CheckRateLimit(r.Context(), key, limit.Requests)
		if err != nil {
			// Redis trouble should not take the API down
			rl.logger.Warn().Err(err).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			metrics.RateLimitHits.WithLabelValues(endpoint).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(limit.Window.Seconds())))
			http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
			return
		}

		if err := rl.redis.IncrementRateLimit(r.Context(), key, limit.Window); err != nil {
			rl.logger.Warn().Err(err).Msg("rate limit increment failed")
		}

		next.ServeHTTP(w, r)
	})
}

// realIP returns the client address without the port. The chi RealIP
// middleware has already resolved forwarding headers by this point.
func realIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
