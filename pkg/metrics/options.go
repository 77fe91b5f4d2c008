package metrics

import (
	"maps"

	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the prefix of every metric name.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithCustomLabels adds constant labels, such as a deployment name, to all metrics.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
