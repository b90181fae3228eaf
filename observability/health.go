package observability

import (
	"context"

	"github.com/kbukum/composekit/component"
)

// ServiceHealth describes the overall health of an application and its
// started components.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// NewServiceHealth creates a ServiceHealth with status healthy.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  component.StatusHealthy,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(ch component.Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case component.StatusUnhealthy:
		sh.Status = component.StatusUnhealthy
	case component.StatusDegraded:
		if sh.Status != component.StatusUnhealthy {
			sh.Status = component.StatusDegraded
		}
	}
}

// CollectHealth builds a ServiceHealth from every started component in the registry.
func CollectHealth(ctx context.Context, service, version string, registry *component.Registry) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	if registry == nil {
		return sh
	}
	for _, h := range registry.HealthAll(ctx) {
		sh.AddComponent(h)
	}
	return sh
}
