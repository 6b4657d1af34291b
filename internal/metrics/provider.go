package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	rewind "github.com/rewind-labs/rewind/pkg/rewind/v1/metrics"
)

// PrometheusRegistryProvider owns the Prometheus registry that store
// counters register against. Each store gets its own provider so counter
// names never collide between instances.
type PrometheusRegistryProvider struct {
	registry *prometheus.Registry
}

// NewPrometheusRegistryProvider returns a provider wrapping a fresh
// registry.
func NewPrometheusRegistryProvider() *PrometheusRegistryProvider {
	return &PrometheusRegistryProvider{
		registry: prometheus.NewRegistry(),
	}
}

// Registry exposes the registry for collector registration and scraping.
func (p *PrometheusRegistryProvider) Registry() *prometheus.Registry {
	return p.registry
}

var _ rewind.RegistryProvider = (*PrometheusRegistryProvider)(nil)
