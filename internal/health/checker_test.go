package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCheck_AllDependenciesHealthy(t *testing.T) {
	c := New(zap.NewNop())
	c.Add("postgres", func(ctx context.Context) error { return nil })
	c.Add("mailer", func(ctx context.Context) error { return nil })

	rep := c.Check(context.Background())
	if !rep.Healthy() {
		t.Fatalf("status = %q, want ok", rep.Status)
	}
	if rep.Checks["postgres"] != "ok" || rep.Checks["mailer"] != "ok" {
		t.Errorf("checks = %v", rep.Checks)
	}
}

func TestCheck_FailedDependencyDegrades(t *testing.T) {
	c := New(zap.NewNop())
	c.Add("postgres", func(ctx context.Context) error { return errors.New("connection refused") })
	c.Add("mailer", func(ctx context.Context) error { return nil })

	rep := c.Check(context.Background())
	if rep.Healthy() {
		t.Fatal("expected degraded report")
	}
	if rep.Status != "degraded" {
		t.Errorf("status = %q, want degraded", rep.Status)
	}
	if rep.Checks["postgres"] != "connection refused" {
		t.Errorf("postgres check = %q", rep.Checks["postgres"])
	}
	if rep.Checks["mailer"] != "ok" {
		t.Errorf("mailer check = %q", rep.Checks["mailer"])
	}
}

func TestCheck_SlowProbeIsBounded(t *testing.T) {
	c := New(zap.NewNop())
	c.ProbeTimeout = 20 * time.Millisecond
	c.Add("postgres", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	start := time.Now()
	rep := c.Check(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("check took %v, probe timeout not enforced", elapsed)
	}
	if rep.Healthy() {
		t.Fatal("expected degraded report from timed-out probe")
	}
}

func TestCheck_NoDependencies(t *testing.T) {
	rep := New(zap.NewNop()).Check(context.Background())
	if !rep.Healthy() {
		t.Fatalf("status = %q, want ok", rep.Status)
	}
	if rep.Checks != nil {
		t.Errorf("checks = %v, want none", rep.Checks)
	}
}
