package cron_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flemzord/careerai/internal/cron"
	"github.com/flemzord/careerai/internal/cron/crontest"
	"github.com/flemzord/careerai/internal/security"
	"github.com/flemzord/careerai/internal/security/securitytest"
)

func TestRetentionJob_NameSchedule(t *testing.T) {
	t.Parallel()

	j := &cron.RetentionJob{}
	if j.Name() != "conversation_retention" {
		t.Errorf("name = %q", j.Name())
	}
	if j.Schedule() != "0 3 * * *" {
		t.Errorf("schedule = %q", j.Schedule())
	}
	j.ScheduleExpr = "@hourly"
	if j.Schedule() != "@hourly" {
		t.Errorf("schedule override = %q", j.Schedule())
	}
}

func TestRetentionJob_Run(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
	store := &crontest.MockPurger{
		PurgeFunc: func(cutoff time.Time) (int, error) {
			if want := now.Add(-30 * 24 * time.Hour); !cutoff.Equal(want) {
				t.Errorf("cutoff = %v, want %v", cutoff, want)
			}
			return 4, nil
		},
	}
	audit, events := securitytest.NewTestAuditLogger()

	var purged int
	j := &cron.RetentionJob{
		Store:   store,
		MaxAge:  30 * 24 * time.Hour,
		Logger:  slog.Default(),
		Audit:   audit,
		OnPurge: func(n int) { purged = n },
		Now:     func() time.Time { return now },
	}

	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Calls.Load() != 1 {
		t.Errorf("purge calls = %d, want 1", store.Calls.Load())
	}
	if purged != 4 {
		t.Errorf("OnPurge got %d, want 4", purged)
	}
	if ev := events(); len(ev) != 1 || ev[0].Type != security.EventConversationsPurged || ev[0].Metadata["count"] != "4" {
		t.Errorf("audit events = %+v", ev)
	}
}

func TestRetentionJob_Disabled(t *testing.T) {
	t.Parallel()

	store := &crontest.MockPurger{}
	j := &cron.RetentionJob{Store: store, Logger: slog.Default()}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Calls.Load() != 0 {
		t.Error("purge should not run with zero MaxAge")
	}
}

func TestRetentionJob_StoreError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	j := &cron.RetentionJob{
		Store:  &crontest.MockPurger{PurgeFunc: func(time.Time) (int, error) { return 0, boom }},
		MaxAge: time.Hour,
		Logger: slog.Default(),
	}
	if err := j.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
}

func TestRetentionJob_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j := &cron.RetentionJob{Store: &crontest.MockPurger{}, MaxAge: time.Hour, Logger: slog.Default()}
	if err := j.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

type countingPruner struct{ calls atomic.Int32 }

func (p *countingPruner) Prune() int {
	p.calls.Add(1)
	return 2
}

func TestRateLimitPruneJob(t *testing.T) {
	t.Parallel()

	p := &countingPruner{}
	j := &cron.RateLimitPruneJob{Limiter: p, Logger: slog.Default()}
	if j.Name() != "ratelimit_prune" || j.Schedule() != "*/15 * * * *" {
		t.Errorf("name/schedule = %q/%q", j.Name(), j.Schedule())
	}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls.Load() != 1 {
		t.Errorf("prune calls = %d", p.calls.Load())
	}
}

func TestRateLimitPruneJob_RealLimiter(t *testing.T) {
	t.Parallel()

	rl := security.NewRateLimiter(security.RateLimitConfig{})
	j := &cron.RateLimitPruneJob{Limiter: rl, Logger: slog.Default()}
	_ = rl.Allow("s1")
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The student is still inside the hour window.
	if rl.Tracked() != 1 {
		t.Errorf("Tracked() = %d, want 1", rl.Tracked())
	}
}

func TestScheduler_RegistersJobs(t *testing.T) {
	t.Parallel()

	s := cron.NewScheduler(slog.Default())
	jobs := []cron.Job{
		&cron.RetentionJob{Store: &crontest.MockPurger{}, MaxAge: time.Hour, Logger: slog.Default()},
		&cron.RateLimitPruneJob{Limiter: &countingPruner{}, Logger: slog.Default()},
		&crontest.MockJob{NameVal: "extra", ScheduleVal: "@every 1h"},
	}
	for _, j := range jobs {
		if err := s.RegisterJob(j); err != nil {
			t.Fatalf("RegisterJob(%s): %v", j.Name(), err)
		}
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
