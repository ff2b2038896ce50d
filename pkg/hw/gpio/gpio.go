// Package gpio drives the Raspberry Pi header pins with periph.
package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robotalks/petwant.go/pkg/device"
)

// physical header pin to BCM GPIO number.
var headerPins = map[int]int{
	3: 2, 5: 3, 7: 4, 8: 14, 10: 15, 11: 17, 12: 18, 13: 27,
	15: 22, 16: 23, 18: 24, 19: 10, 21: 9, 22: 25, 23: 11, 24: 8,
	26: 7, 27: 0, 28: 1, 29: 5, 31: 6, 32: 12, 33: 13, 35: 19,
	36: 16, 37: 26, 38: 20, 40: 21,
}

// PinName maps a physical header pin to the GPIO name.
func PinName(pin int) (string, error) {
	num, ok := headerPins[pin]
	if !ok {
		return "", fmt.Errorf("header pin %d is not a GPIO", pin)
	}
	return fmt.Sprintf("GPIO%d", num), nil
}

// edgePoll bounds how long a watcher blocks before checking for Close.
const edgePoll = 100 * time.Millisecond

// Header implements device.GPIO.
type Header struct {
	lookup  func(name string) gpio.PinIO
	lock    sync.Mutex
	pins    map[int]gpio.PinIO
	changes chan device.Change
	done    chan struct{}
	wg      sync.WaitGroup
}

// Open initializes the host drivers and returns the header.
func Open() (*Header, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return NewHeader(gpioreg.ByName), nil
}

// NewHeader creates a Header resolving pins with lookup.
func NewHeader(lookup func(name string) gpio.PinIO) *Header {
	return &Header{
		lookup:  lookup,
		pins:    make(map[int]gpio.PinIO),
		changes: make(chan device.Change, 16),
		done:    make(chan struct{}),
	}
}

func (h *Header) pin(num int) (gpio.PinIO, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if p := h.pins[num]; p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("pin %d not set up", num)
}

// Setup implements device.GPIO.
func (h *Header) Setup(num int, dir device.Direction, edge device.Edge) error {
	name, err := PinName(num)
	if err != nil {
		return err
	}
	p := h.lookup(name)
	if p == nil {
		return fmt.Errorf("%s not found", name)
	}
	if dir == device.Out {
		err = p.Out(gpio.Low)
	} else {
		mode := gpio.NoEdge
		if edge == device.EdgeBoth {
			mode = gpio.BothEdges
		}
		err = p.In(gpio.PullUp, mode)
	}
	if err != nil {
		return fmt.Errorf("setup %s: %w", name, err)
	}
	h.lock.Lock()
	_, exists := h.pins[num]
	h.pins[num] = p
	h.lock.Unlock()
	if !exists && dir == device.In && edge == device.EdgeBoth {
		h.wg.Add(1)
		go h.watch(num, p)
	}
	glog.V(2).Infof("pin %d (%s) ready", num, name)
	return nil
}

func (h *Header) watch(num int, p gpio.PinIO) {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return
		default:
		}
		if !p.WaitForEdge(edgePoll) {
			continue
		}
		select {
		case h.changes <- device.Change{Pin: num, Value: p.Read() == gpio.High}:
		case <-h.done:
			return
		}
	}
}

// Read implements device.GPIO.
func (h *Header) Read(num int) (bool, error) {
	p, err := h.pin(num)
	if err != nil {
		return false, err
	}
	return p.Read() == gpio.High, nil
}

// Write implements device.GPIO.
func (h *Header) Write(num int, value bool) error {
	p, err := h.pin(num)
	if err != nil {
		return err
	}
	return p.Out(gpio.Level(value))
}

// Changes implements device.GPIO.
func (h *Header) Changes() <-chan device.Change {
	return h.changes
}

// Close stops watching and halts all pins.
func (h *Header) Close() error {
	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
	}
	h.wg.Wait()
	h.lock.Lock()
	defer h.lock.Unlock()
	var lastErr error
	for _, p := range h.pins {
		if err := p.Halt(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
