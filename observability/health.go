package observability

import (
	"context"
	"time"
)

// HealthStatus represents the health state of a backend.
type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

// Health describes the reachability of one backend.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Latency time.Duration     `json:"latency"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates backend probes.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a probe result; any down component marks the service down.
func (sh *ServiceHealth) AddComponent(h Health) {
	sh.Components = append(sh.Components, h)
	if h.Status == HealthStatusDown {
		sh.Status = HealthStatusDown
	}
}

// ProbeHealth runs probe with a timeout and reports the outcome.
func ProbeHealth(ctx context.Context, name string, probe func(context.Context) bool, timeout time.Duration) Health {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	ok := probe(ctx)
	h := Health{Name: name, Status: HealthStatusDown, Latency: time.Since(start)}
	if ok {
		h.Status = HealthStatusUp
	}
	return h
}
