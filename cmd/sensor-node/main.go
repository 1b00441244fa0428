// Command sensor-node runs a multi-sensor node: it samples light, climate and
// battery, debounces a door contact and a PIR, and reports attribute changes
// to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/config"
	"github.com/sweeney/sensor-node/internal/gpio"
	"github.com/sweeney/sensor-node/internal/logging"
	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/metrics"
	"github.com/sweeney/sensor-node/internal/mqtt"
	"github.com/sweeney/sensor-node/internal/node"
	"github.com/sweeney/sensor-node/internal/nv"
	"github.com/sweeney/sensor-node/internal/sensors"
	"github.com/sweeney/sensor-node/internal/status"
	"github.com/sweeney/sensor-node/internal/timer"
	"github.com/sweeney/sensor-node/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/sensor-node/config.toml", "Path to the TOML config file (created with defaults if missing)")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	printState := flag.Bool("print-state", false, "Print input levels and stored settings, then exit")

	flag.Parse()

	if err := run(*configPath, *logLevel, *printState); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}

func run(configPath, logLevel string, printState bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logCloser, err := logging.Init(level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logCloser.Close()

	store, err := nv.OpenSQLite(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open settings store: %w", err)
	}
	defer store.Close()

	board, err := gpio.NewRealBoard(cfg.GPIO.Chip, pinsFromConfig(cfg.GPIO))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	contact, motion, err := board.Levels()
	if printState {
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("contact: %s, motion: %s\n", levelString(contact), levelString(motion))
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("reading initial input levels failed, assuming low")
	}

	drivers, closeSensors := openSensors(cfg)
	defer closeSensors.Close()

	var gauger metrics.Gauger
	if cfg.Datadog.Enabled {
		client, err := metrics.NewStatsd(cfg.Datadog.Addr, cfg.Datadog.Namespace, cfg.Datadog.Tags)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Datadog.Addr).Msg("dogstatsd disabled")
		} else {
			defer client.Close()
			gauger = client
		}
	}
	recorder := metrics.NewRecorder(gauger)
	recorder.Register()

	inbound := make(chan node.Message, 16)
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:     cfg.MQTT.Broker,
		Prefix:     cfg.MQTT.Prefix,
		NodeID:     cfg.Node.ID,
		ClientID:   cfg.MQTT.ClientID,
		BufferSize: cfg.MQTT.BufferSize,
		Inbound:    inbound,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	wheel := timer.NewWheel(time.Now)
	n := node.New(node.Config{
		Timers:    wheel,
		Reporter:  fanout{publisher, recorder},
		Outputs:   board,
		Sensors:   drivers,
		Store:     store,
		Intervals: intervalsFromConfig(cfg.Timing),
	})
	n.Boot(contact, motion)

	heartbeat := cfg.Timing.Heartbeat.Duration
	tracker := status.NewTracker(time.Now(), status.Config{
		NodeID:      cfg.Node.ID,
		ReportMs:    cfg.Timing.Report.Milliseconds(),
		MeasureMs:   cfg.Timing.Measure.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.Update(n.State())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warn().Err(err).Msg("failed to publish startup event")
	} else {
		log.Info().Msg("published startup event")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server error")
			}
		}()
		go srv.Run(ctx)
		defer srv.Shutdown(context.Background())
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http status server listening")
	}

	log.Info().
		Str("node", cfg.Node.ID).
		Str("broker", cfg.MQTT.Broker).
		Dur("report", cfg.Timing.Report.Duration).
		Dur("measure", cfg.Timing.Measure.Duration).
		Dur("heartbeat", heartbeat).
		Msg("started")

	wake := time.NewTimer(time.Hour)
	defer wake.Stop()

	var heartbeatC <-chan time.Time
	if heartbeat > 0 {
		hb := time.NewTicker(heartbeat)
		defer hb.Stop()
		heartbeatC = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(loop{
		node:       n,
		wheel:      wheel,
		edges:      board.Edges(),
		inbound:    inbound,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		now:        time.Now,
		wake:       wake,
	}, wake.C, heartbeatC, sigCh)
}

// loop holds what the run loop drives. All node access happens on the
// run loop's goroutine.
type loop struct {
	node       *node.Node
	wheel      *timer.Wheel
	edges      <-chan gpio.Edge
	inbound    <-chan node.Message
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	now        func() time.Time

	// wake, when set, is re-pointed at the wheel's next deadline after
	// every service round; tick is then its channel.
	wake *time.Timer
}

func runLoop(l loop, tick, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	l.rearm()
	for {
		select {
		case s := <-sig:
			log.Info().Stringer("signal", s).Msg("shutting down")
			l.flushSettings()
			l.publishSystem("SHUTDOWN", signalName(s))
			return nil

		case e, ok := <-l.edges:
			if !ok {
				log.Warn().Msg("gpio edge stream closed")
				l.edges = nil
				continue
			}
			l.node.Post(node.KeyChange{PortAndAction: e.Key, Code: uint8(e.Offset)})
			l.service(0)

		case msg := <-l.inbound:
			l.node.Post(msg)
			l.service(0)

		case <-tick:
			l.service(l.wheel.Due(l.now()))

		case <-heartbeat:
			if net := readNetworkInfo(); net != nil && l.tracker != nil {
				l.tracker.SetNetwork(net)
			}
			l.publishSystem("HEARTBEAT", "")
		}
	}
}

// service runs the node until it is idle and refreshes the tracker.
func (l *loop) service(pending logic.EventSet) {
	l.node.Service(pending)
	l.rearm()
	if l.tracker == nil {
		return
	}
	l.tracker.Update(l.node.State())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

// rearm points the wake timer at the earliest armed deadline, or stops it
// when nothing is armed.
func (l *loop) rearm() {
	if l.wake == nil {
		return
	}
	if !l.wake.Stop() {
		select {
		case <-l.wake.C:
		default:
		}
	}
	next, ok := l.wheel.Next()
	if !ok {
		return
	}
	d := next.Sub(l.now())
	if d < 0 {
		d = 0
	}
	l.wake.Reset(d)
}

// flushSettings writes a coalesced save that is still waiting on its timer.
func (l *loop) flushSettings() {
	if !l.wheel.Armed(logic.EventSaveSettings) {
		return
	}
	l.wheel.Disarm(logic.EventSaveSettings)
	l.node.Service(logic.Set(logic.EventSaveSettings))
	log.Info().Msg("flushed pending settings save")
}

func (l *loop) publishSystem(name, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     name,
		Reason:    reason,
		Retained:  name != "HEARTBEAT",
	}
	if l.tracker != nil {
		if l.mqttStatus != nil {
			l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
		}
		l.tracker.Update(l.node.State())
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), name, reason)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Warn().Err(err).Str("event", name).Msg("system event publish failed")
		return
	}
	log.Debug().Str("event", name).Msg("published system event")
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// fanout delivers each report to every reporter in order.
type fanout []node.Reporter

func (f fanout) AttributeChanged(a logic.Attribute) {
	for _, r := range f {
		r.AttributeChanged(a)
	}
}

func pinsFromConfig(c config.GPIO) gpio.Pins {
	return gpio.Pins{
		Contact:     c.Contact,
		Motion:      c.Motion,
		Button:      c.Button,
		MotionPower: c.MotionPower,
		LED:         c.LED,
	}
}

// intervalsFromConfig overlays the configured timing on the defaults. Zero
// values keep the default.
func intervalsFromConfig(t config.Timing) node.Intervals {
	iv := node.DefaultIntervals()
	set := func(dst *time.Duration, d config.Duration) {
		if d.Duration > 0 {
			*dst = d.Duration
		}
	}
	set(&iv.Report, t.Report)
	set(&iv.Measure, t.Measure)
	set(&iv.SampleTick, t.SampleTick)
	set(&iv.ContactConfirm, t.ContactConfirm)
	set(&iv.SaveDelay, t.SaveDelay)
	set(&iv.MotionSettle, t.MotionSettle)
	return iv
}

// openSensors opens whatever drivers the hardware offers. A driver that
// cannot be opened is left nil and its measurement stays disabled.
func openSensors(cfg config.Config) (node.Sensors, io.Closer) {
	var s node.Sensors
	if cfg.Sysfs.ADCPath != "" {
		s.Light = sensors.ADCIlluminance{Path: cfg.Sysfs.ADCPath}
	}
	if cfg.Sysfs.BatteryPath != "" {
		s.Battery = sensors.SupplyBattery{Path: cfg.Sysfs.BatteryPath}
	}

	bus, err := sensors.OpenI2C(cfg.I2C.Bus)
	if err != nil {
		log.Warn().Err(err).Str("bus", cfg.I2C.Bus).Msg("i2c unavailable, bus sensors disabled")
		return s, nopCloser{}
	}
	s.Env = sensors.NewBME280(bus, cfg.I2C.BME280Addr)
	s.BusLight = sensors.NewBH1750(bus, cfg.I2C.BH1750Addr)
	return s, bus
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType   = "NETWORK_TYPE"
	envNetworkIP     = "NETWORK_IP"
	envNetworkStatus = "NETWORK_STATUS"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:   os.Getenv(envNetworkType),
		IP:     os.Getenv(envNetworkIP),
		Status: s,
	}
}

func levelString(high bool) string {
	if high {
		return "HIGH"
	}
	return "LOW"
}
