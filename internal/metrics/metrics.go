// Package metrics exports per-extension state in the Prometheus text format
// for node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ExtensionState is the observed state of one extension.
type ExtensionState struct {
	Name      string
	Installed bool
	Active    bool
	Running   bool
}

// Collector holds the extension gauges in a private registry.
type Collector struct {
	registry  *prometheus.Registry
	installed *prometheus.GaugeVec
	active    *prometheus.GaugeVec
	running   *prometheus.GaugeVec
}

// NewCollector returns a Collector with its gauges registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		installed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "extension_installed",
			Help: "Whether the extension directory exists (1) or not (0).",
		}, []string{"extension"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "extension_active",
			Help: "Whether the extension is marked to start at boot.",
		}, []string{"extension"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "extension_running",
			Help: "Whether the compose tool reports the extension as running.",
		}, []string{"extension"}),
	}
	c.registry.MustRegister(c.installed, c.active, c.running)
	return c
}

// Registry returns the registry the gauges live in.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe sets the gauges from states. Extensions not in states keep their
// last value.
func (c *Collector) Observe(states []ExtensionState) {
	for _, s := range states {
		c.installed.WithLabelValues(s.Name).Set(gauge(s.Installed))
		c.active.WithLabelValues(s.Name).Set(gauge(s.Active))
		c.running.WithLabelValues(s.Name).Set(gauge(s.Running))
	}
}

// WriteTextfile writes the gauges for states to path. The file is replaced
// atomically.
func WriteTextfile(path string, states []ExtensionState) error {
	c := NewCollector()
	c.Observe(states)
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func gauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
