package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "petwant.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	conf := newDefaultConfig()
	path := writeFile(t, `
port = "ws://bridge:8080/serial"
button_pin = 15
max_drift = "30s"
schedule_timeout = "0s"
metrics = ":9100"
`)
	require.NoError(t, conf.LoadFile(path))
	require.Equal(t, "ws://bridge:8080/serial", conf.Port)
	require.Equal(t, 15, conf.ButtonPin)
	require.Equal(t, 16, conf.PowerLEDPin)
	require.Equal(t, 30*time.Second, conf.MaxDrift)
	require.Equal(t, time.Duration(0), conf.ScheduleTimeout)
	require.Equal(t, 500*time.Millisecond, conf.BlinkInterval)
	require.Equal(t, ":9100", conf.MetricsAddr)
}

func TestLoadFileErrors(t *testing.T) {
	conf := newDefaultConfig()
	require.Error(t, conf.LoadFile(writeFile(t, `bogus = 1`)))
	require.Error(t, conf.LoadFile(writeFile(t, `port = `)))
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestApplyEnv(t *testing.T) {
	path := writeFile(t, `
port = "/dev/ttyAMA0"
id = "from-file"
`)
	vars := map[string]string{
		ConfigFileEnv:      path,
		"PETWANT_ID":       "kitchen",
		"PETWANT_MQTT_URL": "mqtt://broker/home/",
	}
	conf := newDefaultConfig()
	require.NoError(t, conf.applyEnv(func(name string) string { return vars[name] }))
	require.Equal(t, "/dev/ttyAMA0", conf.Port)
	require.Equal(t, "kitchen", conf.DeviceID)
	require.Equal(t, "mqtt://broker/home/", conf.MQTTBrokerURL)

	vars[ConfigFileEnv] = filepath.Join(t.TempDir(), "missing.toml")
	broken := newDefaultConfig()
	require.Error(t, broken.applyEnv(func(name string) string { return vars[name] }))
}

func TestDeviceConfig(t *testing.T) {
	conf := newDefaultConfig()
	conf.ButtonPin = 15
	conf.ScheduleTimeout = 0
	dev := conf.DeviceConfig()
	require.Equal(t, 15, dev.ButtonPin)
	require.Equal(t, 18, dev.LinkLEDPin)
	require.Equal(t, 10*time.Second, dev.MaxDrift)
	require.Equal(t, time.Duration(0), dev.ScheduleTimeout)
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
}
