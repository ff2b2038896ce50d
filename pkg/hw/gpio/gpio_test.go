package gpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/robotalks/petwant.go/pkg/device"
)

func testHeader() (*Header, map[string]*gpiotest.Pin) {
	pins := map[string]*gpiotest.Pin{
		"GPIO23": {N: "GPIO23", Num: 23, L: gpio.High},
		"GPIO24": {N: "GPIO24", Num: 24, L: gpio.High},
		"GPIO25": {N: "GPIO25", Num: 25, L: gpio.High, EdgesChan: make(chan gpio.Level)},
	}
	return NewHeader(func(name string) gpio.PinIO {
		if p := pins[name]; p != nil {
			return p
		}
		return nil
	}), pins
}

func TestPinName(t *testing.T) {
	name, err := PinName(16)
	require.NoError(t, err)
	require.Equal(t, "GPIO23", name)
	name, err = PinName(22)
	require.NoError(t, err)
	require.Equal(t, "GPIO25", name)
	_, err = PinName(1)
	require.Error(t, err)
}

func TestHeaderOutput(t *testing.T) {
	h, pins := testHeader()
	defer h.Close()
	_, err := h.Read(16)
	require.Error(t, err)

	require.NoError(t, h.Setup(16, device.Out, device.EdgeNone))
	require.Equal(t, gpio.Low, pins["GPIO23"].Read())
	require.NoError(t, h.Write(16, true))
	level, err := h.Read(16)
	require.NoError(t, err)
	require.True(t, level)

	require.Error(t, h.Setup(1, device.Out, device.EdgeNone))
	require.Error(t, h.Setup(3, device.Out, device.EdgeNone))
}

func TestHeaderEdges(t *testing.T) {
	h, pins := testHeader()
	require.NoError(t, h.Setup(22, device.In, device.EdgeBoth))

	pins["GPIO25"].EdgesChan <- gpio.Low
	select {
	case c := <-h.Changes():
		require.Equal(t, device.Change{Pin: 22, Value: false}, c)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	pins["GPIO25"].EdgesChan <- gpio.High
	select {
	case c := <-h.Changes():
		require.Equal(t, device.Change{Pin: 22, Value: true}, c)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	require.NoError(t, h.Close())
}
