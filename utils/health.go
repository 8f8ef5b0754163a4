package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// HealthStatus is the latest snapshot of every registered dependency.
type HealthStatus struct {
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Healthy reports whether every check passed in the snapshot.
func (s HealthStatus) Healthy() bool {
	for _, ok := range s.Checks {
		if !ok {
			return false
		}
	}
	return true
}

// HealthMonitor runs registered checks periodically and keeps the last result
// in memory so the details endpoint never blocks on a slow dependency.
type HealthMonitor struct {
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.RWMutex
	checks  map[string]HealthCheck
	current HealthStatus
}

func NewHealthMonitor(logger *zap.Logger) *HealthMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthMonitor{
		logger:  logger,
		timeout: 2 * time.Second,
		checks:  make(map[string]HealthCheck),
	}
}

func (m *HealthMonitor) Register(name string, check HealthCheck) {
	m.mu.Lock()
	m.checks[name] = check
	m.mu.Unlock()
}

// Status returns a copy of the latest snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	checks := make(map[string]bool, len(m.current.Checks))
	for name, ok := range m.current.Checks {
		checks[name] = ok
	}
	return HealthStatus{Checks: checks, CheckedAt: m.current.CheckedAt}
}

// Run executes every check once and stores the result.
func (m *HealthMonitor) Run(ctx context.Context) HealthStatus {
	m.mu.RLock()
	checks := make(map[string]HealthCheck, len(m.checks))
	for name, check := range m.checks {
		checks[name] = check
	}
	m.mu.RUnlock()

	results := make(map[string]bool, len(checks))
	for name, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			m.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
		}
		results[name] = err == nil
	}

	status := HealthStatus{Checks: results, CheckedAt: time.Now()}
	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Start runs the checks immediately and then every interval until ctx is done.
func (m *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		m.Run(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Run(ctx)
			}
		}
	}()
}
