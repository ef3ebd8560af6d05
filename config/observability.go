package config

import (
	"strings"
	"time"
)

const defaultMetricsNamespace = "queue_monitor"

// ObservabilityConfig groups configuration that controls metrics.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
}

// ObservabilityMetricsConfig controls the Prometheus endpoint and the scope collector.
type ObservabilityMetricsConfig struct {
	Enabled   bool   `env:"OBSERVABILITY_METRICS_ENABLED"   envDefault:"true"`
	Namespace string `env:"OBSERVABILITY_METRICS_NAMESPACE" envDefault:"queue_monitor"`
	// CollectInterval is how often job counts per scope are refreshed.
	CollectInterval time.Duration `env:"OBSERVABILITY_METRICS_COLLECT_INTERVAL" envDefault:"1m"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.Namespace = strings.TrimSpace(c.Namespace)
	if c.Namespace == "" {
		c.Namespace = defaultMetricsNamespace
	}
	if c.CollectInterval < time.Second {
		c.CollectInterval = time.Minute
	}
}

// IsEnabled returns true when metrics are served.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled
}
