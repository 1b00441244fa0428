// Package metrics exports reported attributes: a DogStatsD gauge per report
// and Prometheus-format series served on /metrics.
package metrics

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
)

// Gauger is the subset of the DogStatsD client the recorder uses.
type Gauger interface {
	Gauge(name string, value float64, tags []string, rate float64) error
}

// Recorder implements node.Reporter for metrics.
type Recorder struct {
	set    *metrics.Set
	statsd Gauger

	mu     sync.Mutex
	values map[string]*atomic.Uint64 // float64 bits
}

// NewRecorder creates a recorder whose series live in their own set. Pass a
// nil gauger to disable DogStatsD.
func NewRecorder(g Gauger) *Recorder {
	return &Recorder{
		set:    metrics.NewSet(),
		statsd: g,
		values: map[string]*atomic.Uint64{},
	}
}

// Register adds the recorder's series to the global /metrics output.
func (r *Recorder) Register() {
	metrics.RegisterSet(r.set)
}

// AttributeChanged counts the report and records the value.
func (r *Recorder) AttributeChanged(a logic.Attribute) {
	name := a.ID.Name()
	r.set.GetOrCreateCounter(fmt.Sprintf(`sensor_node_attribute_reports_total{name=%q}`, name)).Inc()
	r.value(name).Store(math.Float64bits(float64(a.Value)))

	if r.statsd != nil {
		if err := r.statsd.Gauge("attribute", float64(a.Value), []string{"name:" + name}, 1); err != nil {
			log.Warn().Err(err).Str("metric", name).Msg("failed to emit gauge metric")
		}
	}
}

// value returns the cell backing the value gauge for name, creating the
// gauge on first use.
func (r *Recorder) value(name string) *atomic.Uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.values[name]; ok {
		return v
	}
	v := new(atomic.Uint64)
	r.values[name] = v
	r.set.GetOrCreateGauge(fmt.Sprintf(`sensor_node_attribute_value{name=%q}`, name), func() float64 {
		return math.Float64frombits(v.Load())
	})
	return v
}

// Reports returns how many reports of the named attribute were counted.
func (r *Recorder) Reports(name string) uint64 {
	return r.set.GetOrCreateCounter(fmt.Sprintf(`sensor_node_attribute_reports_total{name=%q}`, name)).Get()
}

// NewStatsd connects a DogStatsD client with the given namespace and
// constant tags.
func NewStatsd(addr, namespace string, tags []string) (*statsd.Client, error) {
	c, err := statsd.New(addr)
	if err != nil {
		return nil, fmt.Errorf("create dogstatsd client: %w", err)
	}
	c.Namespace = namespace
	c.Tags = tags

	log.Info().
		Str("addr", addr).
		Str("namespace", namespace).
		Strs("tags", tags).
		Msg("dogstatsd client initialized")
	return c, nil
}
