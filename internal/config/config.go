// Package config loads the daemon configuration from a TOML file. A file
// holding the defaults is written when none exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration written as a string ("10s", "30m") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Node struct {
	ID string `toml:"id"`
}

type MQTT struct {
	Broker     string `toml:"broker"`
	Prefix     string `toml:"prefix"`
	ClientID   string `toml:"client_id"`
	BufferSize int    `toml:"buffer_size"`
}

type HTTP struct {
	Addr string `toml:"addr"`
}

type Storage struct {
	Path string `toml:"path"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type GPIO struct {
	Chip        string `toml:"chip"`
	Contact     int    `toml:"contact"`
	Motion      int    `toml:"motion"`
	Button      int    `toml:"button"`
	MotionPower int    `toml:"motion_power"`
	LED         int    `toml:"led"`
}

type I2C struct {
	Bus        string `toml:"bus"`
	BME280Addr uint16 `toml:"bme280_addr"`
	BH1750Addr uint16 `toml:"bh1750_addr"`
}

type Sysfs struct {
	ADCPath     string `toml:"adc_path"`
	BatteryPath string `toml:"battery_path"`
}

// Timing holds the node timers. Zero values fall back to the defaults.
type Timing struct {
	Report         Duration `toml:"report"`
	Measure        Duration `toml:"measure"`
	SampleTick     Duration `toml:"sample_tick"`
	ContactConfirm Duration `toml:"contact_confirm"`
	SaveDelay      Duration `toml:"save_delay"`
	MotionSettle   Duration `toml:"motion_settle"`
	Heartbeat      Duration `toml:"heartbeat"`
}

type Datadog struct {
	Enabled   bool     `toml:"enabled"`
	Addr      string   `toml:"addr"`
	Namespace string   `toml:"namespace"`
	Tags      []string `toml:"tags"`
}

// Config is the full daemon configuration.
type Config struct {
	Node    Node    `toml:"node"`
	MQTT    MQTT    `toml:"mqtt"`
	HTTP    HTTP    `toml:"http"`
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
	GPIO    GPIO    `toml:"gpio"`
	I2C     I2C     `toml:"i2c"`
	Sysfs   Sysfs   `toml:"sysfs"`
	Timing  Timing  `toml:"timing"`
	Datadog Datadog `toml:"datadog"`
}

// Default returns the configuration written to a fresh file.
func Default() Config {
	return Config{
		Node:    Node{ID: "node1"},
		MQTT:    MQTT{Broker: "tcp://localhost:1883", Prefix: "sensors", BufferSize: 256},
		HTTP:    HTTP{Addr: ":8080"},
		Storage: Storage{Path: "/var/lib/sensor-node/nv.db"},
		Log:     Log{Level: "info"},
		GPIO: GPIO{
			Chip:        "gpiochip0",
			Contact:     17,
			Motion:      27,
			Button:      22,
			MotionPower: 23,
			LED:         24,
		},
		I2C: I2C{Bus: "", BME280Addr: 0x76, BH1750Addr: 0x23},
		Sysfs: Sysfs{
			ADCPath:     "/sys/bus/iio/devices/iio:device0/in_voltage0_raw",
			BatteryPath: "/sys/class/power_supply/battery/voltage_now",
		},
		Timing: Timing{
			Report:         Duration{30 * time.Minute},
			Measure:        Duration{10 * time.Second},
			SampleTick:     Duration{100 * time.Millisecond},
			ContactConfirm: Duration{500 * time.Millisecond},
			SaveDelay:      Duration{2 * time.Second},
			MotionSettle:   Duration{3 * time.Second},
			Heartbeat:      Duration{15 * time.Minute},
		},
		Datadog: Datadog{
			Addr:      "127.0.0.1:8125",
			Namespace: "sensor_node.",
		},
	}
}

// Load reads path. A missing file is created holding Default(). Keys absent
// from an existing file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Validate checks the values the daemon cannot run without.
func (c Config) Validate() error {
	var errs []error
	if c.Node.ID == "" {
		errs = append(errs, errors.New("node.id is empty"))
	}
	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is empty"))
	}
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is empty"))
	}
	pins := map[int]string{}
	for name, pin := range map[string]int{
		"contact":      c.GPIO.Contact,
		"motion":       c.GPIO.Motion,
		"button":       c.GPIO.Button,
		"motion_power": c.GPIO.MotionPower,
		"led":          c.GPIO.LED,
	} {
		if other, ok := pins[pin]; ok {
			errs = append(errs, fmt.Errorf("gpio.%s and gpio.%s share line %d", name, other, pin))
		}
		pins[pin] = name
	}
	return errors.Join(errs...)
}
