package cron

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/flemzord/careerai/internal/security"
)

// Purger is the subset of memory.HistoryStore needed by RetentionJob.
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Pruner is implemented by state that can drop idle entries, such as
// security.RateLimiter.
type Pruner interface {
	Prune() int
}

// RetentionJob deletes conversations not updated within MaxAge.
type RetentionJob struct {
	Store        Purger
	MaxAge       time.Duration
	Logger       *slog.Logger
	Audit        *security.AuditLogger
	ScheduleExpr string // empty = default "0 3 * * *"

	// OnPurge, if set, receives the number of deleted conversations.
	OnPurge func(n int)

	// Now overrides time.Now.
	Now func() time.Time
}

// Compile-time interface check.
var _ Job = (*RetentionJob)(nil)

// Name implements Job.
func (j *RetentionJob) Name() string { return "conversation_retention" }

// Schedule implements Job.
func (j *RetentionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 3 * * *"
}

// Run purges conversations last updated before now - MaxAge.
// A non-positive MaxAge disables the purge.
func (j *RetentionJob) Run(ctx context.Context) error {
	if j.MaxAge <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("cron: retention cancelled: %w", ctx.Err())
	}

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	cutoff := now().Add(-j.MaxAge)

	n, err := j.Store.PurgeBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cron: purge conversations: %w", err)
	}
	if j.OnPurge != nil {
		j.OnPurge(n)
	}
	if n > 0 {
		j.Logger.Info("cron: purged expired conversations", "count", n, "cutoff", cutoff.UTC())
		j.Audit.Log(security.AuditEvent{
			Type:     security.EventConversationsPurged,
			Metadata: map[string]string{"count": strconv.Itoa(n), "cutoff": cutoff.UTC().Format(time.RFC3339)},
		})
	}
	return nil
}

// RateLimitPruneJob drops per-student rate limiter state for idle students.
type RateLimitPruneJob struct {
	Limiter      Pruner
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/15 * * * *"
}

// Compile-time interface check.
var _ Job = (*RateLimitPruneJob)(nil)

// Name implements Job.
func (j *RateLimitPruneJob) Name() string { return "ratelimit_prune" }

// Schedule implements Job.
func (j *RateLimitPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/15 * * * *"
}

// Run prunes idle limiter entries.
func (j *RateLimitPruneJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: rate limit prune cancelled: %w", ctx.Err())
	}
	if n := j.Limiter.Prune(); n > 0 {
		j.Logger.Debug("cron: pruned idle rate limit state", "count", n)
	}
	return nil
}
