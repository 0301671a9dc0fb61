package security

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned when a student exceeds the message rate.
var ErrRateLimited = errors.New("security: rate limit exceeded")

// RateLimitConfig holds the per-student message limits.
type RateLimitConfig struct {
	MessagesPerMin  int `yaml:"messages_per_min"`
	MessagesPerHour int `yaml:"messages_per_hour"`
}

func rateLimitConfigDefaults() RateLimitConfig {
	return RateLimitConfig{
		MessagesPerMin:  10,
		MessagesPerHour: 100,
	}
}

// RateLimiter implements per-student sliding window rate limiting.
// Each student gets a minute and an hour window; a message must fit both.
type RateLimiter struct {
	mu       sync.Mutex
	students map[string]*studentWindows
	config   RateLimitConfig
	now      func() time.Time
}

type studentWindows struct {
	minute bucket
	hour   bucket
}

type bucket struct {
	window time.Duration
	limit  int
	events []time.Time
}

// NewRateLimiter creates a rate limiter with the given config.
// Zero-value fields in cfg are replaced with defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	defaults := rateLimitConfigDefaults()
	if cfg.MessagesPerMin <= 0 {
		cfg.MessagesPerMin = defaults.MessagesPerMin
	}
	if cfg.MessagesPerHour <= 0 {
		cfg.MessagesPerHour = defaults.MessagesPerHour
	}

	return &RateLimiter{
		students: make(map[string]*studentWindows),
		config:   cfg,
		now:      time.Now,
	}
}

// Allow records a message for studentID, or returns ErrRateLimited if
// either window is full. Rejected messages are not recorded.
func (rl *RateLimiter) Allow(studentID string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	sw, ok := rl.students[studentID]
	if !ok {
		sw = &studentWindows{
			minute: bucket{window: time.Minute, limit: rl.config.MessagesPerMin},
			hour:   bucket{window: time.Hour, limit: rl.config.MessagesPerHour},
		}
		rl.students[studentID] = sw
	}

	now := rl.now()
	sw.minute.evict(now)
	sw.hour.evict(now)

	if sw.minute.full() {
		return fmt.Errorf("%w: %d messages per minute", ErrRateLimited, sw.minute.limit)
	}
	if sw.hour.full() {
		return fmt.Errorf("%w: %d messages per hour", ErrRateLimited, sw.hour.limit)
	}

	sw.minute.events = append(sw.minute.events, now)
	sw.hour.events = append(sw.hour.events, now)
	return nil
}

// Prune forgets students with no message in the last hour and reports
// how many were dropped.
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	n := 0
	for id, sw := range rl.students {
		sw.hour.evict(now)
		if len(sw.hour.events) == 0 {
			delete(rl.students, id)
			n++
		}
	}
	return n
}

// Tracked returns the number of students currently holding window state.
func (rl *RateLimiter) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.students)
}

func (b *bucket) full() bool {
	return len(b.events) >= b.limit
}

// evict removes events outside the sliding window.
func (b *bucket) evict(now time.Time) {
	cutoff := now.Add(-b.window)
	// Events are chronologically ordered.
	i := 0
	for i < len(b.events) && b.events[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.events = b.events[i:]
	}
}
