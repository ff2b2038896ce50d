// Package env provides the configuration of petwant programs.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/robotalks/petwant.go/pkg/device"
	"github.com/robotalks/petwant.go/pkg/hw/gpio"
	"github.com/robotalks/petwant.go/pkg/hw/serial"
)

// Config holds the options of the feeder daemon and tools.
type Config struct {
	// Port is a serial port URL, see serial.New.
	Port            string        `toml:"port"`
	PowerLEDPin     int           `toml:"power_led_pin"`
	LinkLEDPin      int           `toml:"link_led_pin"`
	ButtonPin       int           `toml:"button_pin"`
	MaxDrift        time.Duration `toml:"max_drift"`
	BlinkInterval   time.Duration `toml:"blink_interval"`
	ScheduleTimeout time.Duration `toml:"schedule_timeout"`

	// MQTTBrokerURL e.g. mqtt://host:port/topic-prefix/, empty disables MQTT.
	MQTTBrokerURL string `toml:"mqtt"`
	DeviceID      string `toml:"id"`
	// MetricsAddr is the listen address of /metrics, empty disables it.
	MetricsAddr string `toml:"metrics"`
}

// ConfigFileEnv names the environment variable pointing to a TOML file.
const ConfigFileEnv = "PETWANT_CONFIG"

var (
	defaultConfig = newDefaultConfig()
	loadErr       error
)

func init() {
	loadErr = defaultConfig.applyEnv(os.Getenv)
}

func newDefaultConfig() Config {
	dev := device.DefaultConfig()
	return Config{
		Port:            "/dev/serial0",
		PowerLEDPin:     dev.PowerLEDPin,
		LinkLEDPin:      dev.LinkLEDPin,
		ButtonPin:       dev.ButtonPin,
		MaxDrift:        dev.MaxDrift,
		BlinkInterval:   dev.BlinkInterval,
		ScheduleTimeout: dev.ScheduleTimeout,
		MQTTBrokerURL:   "mqtt://localhost:1883/petwant/",
		DeviceID:        MachineID(),
	}
}

// applyEnv loads the file named by PETWANT_CONFIG, then single variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	if path := getenv(ConfigFileEnv); path != "" {
		if err := c.LoadFile(path); err != nil {
			return err
		}
	}
	if val := getenv("PETWANT_PORT"); val != "" {
		c.Port = val
	}
	if val := getenv("PETWANT_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv("PETWANT_ID"); val != "" {
		c.DeviceID = val
	}
	return nil
}

// LoadFile overlays the settings of a TOML file.
func (c *Config) LoadFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for n, key := range undecoded {
			keys[n] = key.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// MachineID identifies this machine, it's the default device ID.
func MachineID() string {
	id, err := machineid.ProtectedID("petwant")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "petwant"
	}
	return id[:16]
}

// SetupFlags sets command line flags. It fails if the config file is broken.
func SetupFlags() {
	if loadErr != nil {
		log.Fatalln(loadErr)
	}
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port path or URL")
	flag.IntVar(&defaultConfig.PowerLEDPin, "power-led-pin", defaultConfig.PowerLEDPin, "Power LED header pin")
	flag.IntVar(&defaultConfig.LinkLEDPin, "link-led-pin", defaultConfig.LinkLEDPin, "Link LED header pin")
	flag.IntVar(&defaultConfig.ButtonPin, "button-pin", defaultConfig.ButtonPin, "Button header pin")
	flag.DurationVar(&defaultConfig.MaxDrift, "max-drift", defaultConfig.MaxDrift, "Clock drift tolerated before fixing the feeder clock")
	flag.DurationVar(&defaultConfig.BlinkInterval, "blink-interval", defaultConfig.BlinkInterval, "LED blinking interval")
	flag.DurationVar(&defaultConfig.ScheduleTimeout, "schedule-timeout", defaultConfig.ScheduleTimeout, "Timeout retrieving the schedule, 0 waits forever")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics", defaultConfig.MetricsAddr, "Metrics listen address")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// DeviceConfig converts to device.Config.
func (c *Config) DeviceConfig() device.Config {
	conf := device.DefaultConfig()
	conf.PowerLEDPin = c.PowerLEDPin
	conf.LinkLEDPin = c.LinkLEDPin
	conf.ButtonPin = c.ButtonPin
	conf.MaxDrift = c.MaxDrift
	conf.BlinkInterval = c.BlinkInterval
	conf.ScheduleTimeout = c.ScheduleTimeout
	return conf
}

// NewDevice opens the hardware and creates the Device.
func (c *Config) NewDevice() (*device.Device, error) {
	port, err := serial.New(c.Port)
	if err != nil {
		return nil, err
	}
	header, err := gpio.Open()
	if err != nil {
		return nil, fmt.Errorf("GPIO init: %w", err)
	}
	return device.New(port, header, c.DeviceConfig()), nil
}

// MustNewDevice creates the Device and fails on error.
func (c *Config) MustNewDevice() *device.Device {
	dev, err := c.NewDevice()
	if err != nil {
		log.Fatalln(err)
	}
	return dev
}
