package component

import "context"

// HealthStatus is the state a component reports.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy reports whether the status is StatusHealthy.
func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Component is a lifecycle-managed piece of infrastructure.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is what a component shows in the startup summary.
type Description struct {
	// Name defaults to Component.Name() when empty.
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable is implemented by components that report themselves in the
// startup summary.
type Describable interface {
	Describe() Description
}

// Route is one registered HTTP route.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by server components to list their routes.
type RouteProvider interface {
	Routes() []Route
}
