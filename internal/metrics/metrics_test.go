package metrics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/sensor-node/internal/logic"
)

type gauge struct {
	name  string
	value float64
	tags  []string
}

type fakeGauger struct {
	gauges []gauge
	err    error
}

func (f *fakeGauger) Gauge(name string, value float64, tags []string, rate float64) error {
	f.gauges = append(f.gauges, gauge{name, value, tags})
	return f.err
}

func TestRecorderCountsReports(t *testing.T) {
	g := &fakeGauger{}
	r := NewRecorder(g)

	r.AttributeChanged(logic.Attribute{ID: logic.AttrTemperature, Value: 2150})
	r.AttributeChanged(logic.Attribute{ID: logic.AttrTemperature, Value: 2210})
	r.AttributeChanged(logic.Attribute{ID: logic.AttrOccupancy, Value: 1})

	assert.Equal(t, uint64(2), r.Reports("temperature"))
	assert.Equal(t, uint64(1), r.Reports("occupancy"))

	require.Len(t, g.gauges, 3)
	assert.Equal(t, gauge{"attribute", 2150, []string{"name:temperature"}}, g.gauges[0])
	assert.Equal(t, gauge{"attribute", 1, []string{"name:occupancy"}}, g.gauges[2])
}

func TestRecorderPrometheusOutput(t *testing.T) {
	r := NewRecorder(nil)
	r.AttributeChanged(logic.Attribute{ID: logic.AttrHumidity, Value: 4550})

	var buf bytes.Buffer
	r.set.WritePrometheus(&buf)
	out := buf.String()

	assert.Contains(t, out, `sensor_node_attribute_reports_total{name="humidity"} 1`)
	assert.Contains(t, out, `sensor_node_attribute_value{name="humidity"} 4550`)
}

func TestRecorderStatsdErrorIgnored(t *testing.T) {
	r := NewRecorder(&fakeGauger{err: errors.New("agent down")})
	r.AttributeChanged(logic.Attribute{ID: logic.AttrContact, Value: 1})
	assert.Equal(t, uint64(1), r.Reports("contact"))
}
