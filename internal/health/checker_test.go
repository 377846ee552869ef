package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func failing(err error) ProbeFunc {
	return func(context.Context) error { return err }
}

func TestCheckAll_degradesAfterThreshold(t *testing.T) {
	checker := New(Config{FailThreshold: 3}, zap.NewNop())
	checker.Register("ledger", failing(errors.New("block 4: prev hash mismatch")))

	for i := 0; i < 2; i++ {
		checker.CheckAll(context.Background())
	}
	snap, ready := checker.Snapshot()
	if !ready {
		t.Fatal("expected ready before the threshold is reached")
	}
	if snap[0].Failures != 2 || snap[0].Status != StatusUnknown {
		t.Errorf("after 2 failures: got %+v", snap[0])
	}

	checker.CheckAll(context.Background())
	snap, ready = checker.Snapshot()
	if ready {
		t.Error("expected not ready after 3 failures")
	}
	if snap[0].Status != StatusDegraded {
		t.Errorf("status: got %q, want %q", snap[0].Status, StatusDegraded)
	}
	if snap[0].LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestCheckAll_recovers(t *testing.T) {
	var broken atomic.Bool
	broken.Store(true)
	checker := New(Config{FailThreshold: 1}, zap.NewNop())
	checker.Register("postgres", func(context.Context) error {
		if broken.Load() {
			return errors.New("connection refused")
		}
		return nil
	})

	checker.CheckAll(context.Background())
	if _, ready := checker.Snapshot(); ready {
		t.Fatal("expected degraded")
	}

	broken.Store(false)
	checker.CheckAll(context.Background())
	snap, ready := checker.Snapshot()
	if !ready {
		t.Fatal("expected ready after recovery")
	}
	if snap[0].Status != StatusHealthy || snap[0].Failures != 0 || snap[0].LastError != "" {
		t.Errorf("after recovery: got %+v", snap[0])
	}
}

func TestCheckAll_probeTimeout(t *testing.T) {
	checker := New(Config{ProbeTimeout: 10 * time.Millisecond, FailThreshold: 1}, zap.NewNop())
	checker.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	checker.CheckAll(context.Background())
	snap, _ := checker.Snapshot()
	if snap[0].Status != StatusDegraded {
		t.Errorf("status: got %q, want %q", snap[0].Status, StatusDegraded)
	}
}

func TestSnapshot_sortedAndMetrics(t *testing.T) {
	checker := New(Config{}, zap.NewNop())
	checker.Register("postgres", failing(nil))
	checker.Register("ledger", failing(nil))

	var calls atomic.Int32
	checker.SetMetricsRecord(func(probe string, success bool) {
		if !success {
			t.Errorf("probe %s reported failure", probe)
		}
		calls.Add(1)
	})
	checker.CheckAll(context.Background())

	snap, ready := checker.Snapshot()
	if !ready {
		t.Error("expected ready")
	}
	if len(snap) != 2 || snap[0].Name != "ledger" || snap[1].Name != "postgres" {
		t.Errorf("snapshot order: got %+v", snap)
	}
	if calls.Load() != 2 {
		t.Errorf("metrics calls: got %d, want 2", calls.Load())
	}
}

func TestStart_stopsOnCancel(t *testing.T) {
	checker := New(Config{CheckInterval: time.Hour}, zap.NewNop())
	var runs atomic.Int32
	checker.Register("ledger", func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Start(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("initial check never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
