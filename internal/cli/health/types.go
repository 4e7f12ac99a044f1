// Package health provides the client side of the status API: response
// types and a small fetcher used by the sfmpd status and sessions views.
package health

import "time"

// Response is the envelope every status API endpoint returns.
type Response[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      T         `json:"data"`
	Error     string    `json:"error,omitempty"`
}

// Liveness is the payload of GET /health.
type Liveness struct {
	Service   string `json:"service"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	UptimeSec int64  `json:"uptime_sec"`
}

// Readiness is the payload of GET /health/ready.
type Readiness struct {
	Address     string `json:"address"`
	Connections int32  `json:"connections"`
}

// Healthy reports whether the envelope carries the "healthy" status.
func (r Response[T]) Healthy() bool {
	return r.Status == "healthy"
}
