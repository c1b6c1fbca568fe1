// Package ratelimit provides token-bucket rate limiting for the API.
package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Rule is the rate limit applied to one endpoint prefix. Limit requests per
// Window, with Burst as the bucket capacity (Limit when zero). A Limit <= 0
// exempts the endpoint entirely.
type Rule struct {
	Prefix string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds limiter configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	Rules         []Rule
}

// LoadConfig builds the limiter configuration from environment variables,
// with generation endpoints rated stricter than scoring.
func LoadConfig() *Config {
	if !envBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:       true,
		DefaultLimit:  envInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow: envDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		Rules: []Rule{
			// LLM-heavy operations
			{Prefix: "/generate", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
			{Prefix: "/score", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
			// Cheap or local operations
			{Prefix: "/fit", Method: "POST", Limit: 300, Window: time.Minute, Burst: 50},
			{Prefix: "/health", Method: "GET", Limit: 0},
		},
	}
}

// bucket is a token bucket refilled continuously at rate tokens/second.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	rate       float64
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func (b *bucket) take(now time.Time) (allowed bool, remaining int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = min(b.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*b.rate)
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true, int(b.tokens)
	}
	return false, 0
}

// Limiter applies per-client, per-endpoint token buckets.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  *Config
	stop    chan struct{}
}

// Info reports the decision and the state a handler needs for headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// NewLimiter creates a limiter and starts its idle-bucket cleanup loop.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}
	l := &Limiter{
		buckets: make(map[string]*bucket),
		config:  config,
		stop:    make(chan struct{}),
	}
	if config.Enabled {
		go l.cleanupLoop()
	}
	return l
}

// Allow decides whether a request from clientID against the endpoint may
// proceed.
func (l *Limiter) Allow(clientID, path, method string) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}

	rule := l.match(path, method)
	if rule.Limit <= 0 {
		return Info{Allowed: true}
	}

	key := clientID + " " + method + " " + rule.Prefix
	b := l.bucketFor(key, rule)

	allowed, remaining := b.take(time.Now())
	info := Info{Allowed: allowed, Limit: rule.Limit, Remaining: remaining}
	if !allowed {
		info.RetryAfter = time.Duration(float64(time.Second) / b.rate)
	}
	return info
}

// Stop terminates the cleanup loop.
func (l *Limiter) Stop() {
	close(l.stop)
}

func (l *Limiter) match(path, method string) Rule {
	for _, r := range l.config.Rules {
		if r.Method == method && strings.HasPrefix(path, r.Prefix) {
			return r
		}
	}
	return Rule{Prefix: path, Method: method, Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
}

func (l *Limiter) bucketFor(key string, rule Rule) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := &bucket{
		capacity:   float64(capacity),
		rate:       float64(rule.Limit) / rule.Window.Seconds(),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
		lastAccess: time.Now(),
	}
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.dropIdle(time.Now().Add(-time.Hour))
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) dropIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		idle := b.lastAccess.Before(cutoff)
		b.mu.Unlock()
		if idle {
			delete(l.buckets, key)
		}
	}
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
