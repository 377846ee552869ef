// Package health runs periodic readiness probes against agrod's backing
// stores and reports which of them are degraded.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status values reported per probe.
const (
	StatusUnknown  = "unknown"
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Config holds health check configuration.
type Config struct {
	CheckInterval time.Duration
	ProbeTimeout  time.Duration
	FailThreshold int
}

// ProbeFunc returns nil when the dependency it checks is usable.
type ProbeFunc func(ctx context.Context) error

// MetricsRecordFunc is an optional callback for recording probe results.
type MetricsRecordFunc func(probe string, success bool)

// ProbeStatus is the last known state of one probe.
type ProbeStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Failures  int       `json:"consecutive_failures"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
}

// Checker runs named probes and degrades a probe after FailThreshold
// consecutive failures.
type Checker struct {
	mu        sync.Mutex
	probes    map[string]ProbeFunc
	status    map[string]*ProbeStatus
	cfg       Config
	onMetrics MetricsRecordFunc
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Checker with no probes.
func New(cfg Config, logger *zap.Logger) *Checker {
	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 3
	}
	return &Checker{
		probes: make(map[string]ProbeFunc),
		status: make(map[string]*ProbeStatus),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Register adds a probe. Registering an existing name replaces it.
func (h *Checker) Register(name string, fn ProbeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = fn
	h.status[name] = &ProbeStatus{Name: name, Status: StatusUnknown}
}

// SetMetricsRecord configures the metrics recording callback.
func (h *Checker) SetMetricsRecord(fn MetricsRecordFunc) {
	h.onMetrics = fn
}

// Start runs CheckAll once, then on every tick until ctx is cancelled.
func (h *Checker) Start(ctx context.Context) {
	h.CheckAll(ctx)
	ticker := time.NewTicker(h.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.CheckAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CheckAll runs every registered probe concurrently and waits for them.
func (h *Checker) CheckAll(ctx context.Context) {
	h.mu.Lock()
	probes := make(map[string]ProbeFunc, len(h.probes))
	for name, fn := range h.probes {
		probes[name] = fn
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	for name, fn := range probes {
		wg.Add(1)
		go func(name string, fn ProbeFunc) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, h.cfg.ProbeTimeout)
			err := fn(pctx)
			cancel()
			h.record(name, err)
		}(name, fn)
	}
	wg.Wait()
}

func (h *Checker) record(name string, err error) {
	if h.onMetrics != nil {
		h.onMetrics(name, err == nil)
	}

	h.mu.Lock()
	st, ok := h.status[name]
	if !ok {
		h.mu.Unlock()
		return
	}
	prev := st.Status
	st.CheckedAt = h.now().UTC()
	if err == nil {
		st.Failures = 0
		st.LastError = ""
		st.Status = StatusHealthy
	} else {
		st.Failures++
		st.LastError = err.Error()
		if st.Failures >= h.cfg.FailThreshold {
			st.Status = StatusDegraded
		}
	}
	cur, failures := st.Status, st.Failures
	h.mu.Unlock()

	switch {
	case prev == StatusDegraded && cur == StatusHealthy:
		h.logger.Info("health: recovered", zap.String("probe", name))
	case prev != StatusDegraded && cur == StatusDegraded:
		h.logger.Warn("health: degraded",
			zap.String("probe", name),
			zap.Int("fail_count", failures),
			zap.Error(err),
		)
	case err != nil:
		h.logger.Debug("health: probe failed", zap.String("probe", name), zap.Error(err))
	}
}

// Snapshot returns every probe's status sorted by name, and whether none is
// degraded.
func (h *Checker) Snapshot() ([]ProbeStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ProbeStatus, 0, len(h.status))
	ready := true
	for _, st := range h.status {
		out = append(out, *st)
		if st.Status == StatusDegraded {
			ready = false
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, ready
}
