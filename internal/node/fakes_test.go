package node

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/nv"
	"github.com/sweeney/sensor-node/internal/sensors"
	"github.com/sweeney/sensor-node/internal/settings"
)

type fakeTimers struct {
	repeating map[logic.EventKind]time.Duration
	once      map[logic.EventKind]time.Duration
	onceCalls []logic.EventKind
	disarmed  []logic.EventKind
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{
		repeating: map[logic.EventKind]time.Duration{},
		once:      map[logic.EventKind]time.Duration{},
	}
}

func (f *fakeTimers) ArmRepeating(k logic.EventKind, p time.Duration) { f.repeating[k] = p }

func (f *fakeTimers) ArmOnce(k logic.EventKind, d time.Duration) {
	f.once[k] = d
	f.onceCalls = append(f.onceCalls, k)
}

func (f *fakeTimers) Disarm(k logic.EventKind) {
	delete(f.repeating, k)
	delete(f.once, k)
	f.disarmed = append(f.disarmed, k)
}

func (f *fakeTimers) countOnce(k logic.EventKind) int {
	c := 0
	for _, o := range f.onceCalls {
		if o == k {
			c++
		}
	}
	return c
}

type recordingReporter struct {
	attrs []logic.Attribute
}

func (r *recordingReporter) AttributeChanged(a logic.Attribute) { r.attrs = append(r.attrs, a) }

func (r *recordingReporter) values(id logic.AttributeID) []int32 {
	var out []int32
	for _, a := range r.attrs {
		if a.ID == id {
			out = append(out, a.Value)
		}
	}
	return out
}

type fakeOutputs struct {
	bias   map[logic.Port]bool
	power  []bool
	blinks int
}

func (f *fakeOutputs) SetBias(p logic.Port, pullUp bool) error {
	f.bias[p] = pullUp
	return nil
}

func (f *fakeOutputs) SetMotionPower(on bool) error {
	f.power = append(f.power, on)
	return nil
}

func (f *fakeOutputs) BlinkLED() error {
	f.blinks++
	return nil
}

type harness struct {
	node     *Node
	timers   *fakeTimers
	reporter *recordingReporter
	outputs  *fakeOutputs
	store    *nv.MemStore
	light    *sensors.FakeIlluminance
	env      *sensors.FakeEnvironment
	bus      *sensors.FakeBusLight
	battery  *sensors.FakeBattery
}

// newHarness builds a node with every sensor fitted. The first light sample
// is consumed by detection at boot.
func newHarness() *harness {
	h := &harness{
		timers:   newFakeTimers(),
		reporter: &recordingReporter{},
		outputs:  &fakeOutputs{bias: map[logic.Port]bool{}},
		store:    nv.NewMemStore(),
		light:    &sensors.FakeIlluminance{Samples: []int32{2000}},
		env: &sensors.FakeEnvironment{Samples: []sensors.Climate{
			{TemperatureCenti: 2150, PressurePa: 101325, HumidityCenti: 4500},
		}},
		bus:     &sensors.FakeBusLight{Samples: []int32{320}},
		battery: &sensors.FakeBattery{MV: 2950},
	}
	h.node = New(Config{
		Timers:   h.timers,
		Reporter: h.reporter,
		Outputs:  h.outputs,
		Sensors: Sensors{
			Light:    h.light,
			BusLight: h.bus,
			Env:      h.env,
			Battery:  h.battery,
		},
		Store:     h.store,
		Intervals: DefaultIntervals(),
	})
	return h
}

func (h *harness) boot() *harness {
	h.node.Boot(false, false)
	return h
}

func (h *harness) storedSettings(t *testing.T) settings.Settings {
	t.Helper()
	var s settings.Settings
	require.NoError(t, s.UnmarshalBinary(h.store.Items[settings.ItemID]))
	return s
}

func (h *harness) key(p logic.Port, pressed bool) {
	h.node.Post(KeyChange{PortAndAction: logic.NewPortAndAction(p, pressed)})
}
