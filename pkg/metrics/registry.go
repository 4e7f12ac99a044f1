// Package metrics defines the observability interfaces of the SFMP server
// and owns the Prometheus registry they report to.
//
// Metrics are opt-in. Until InitRegistry is called IsEnabled returns false
// and constructors in pkg/metrics/prometheus return nil, which callers treat
// as "no metrics" with zero overhead.
//
// Example usage:
//
//	metrics.InitRegistry()
//	m := prometheus.NewSFMPMetrics()
//	adapter, err := sfmp.New(cfg, session.NewRegistry(), m)
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide registry with the Go runtime and
// process collectors registered. Calling it again returns the existing
// registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Reset drops the registry. Tests use it to start from a clean slate.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = nil
}
