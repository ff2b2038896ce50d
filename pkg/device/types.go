package device

import (
	"io"
)

// Port is the serial link to the feeder.
type Port interface {
	io.ReadWriteCloser
	// Open opens the underlying device, it's called once by Connect.
	Open() error
}

// Direction is the direction of a GPIO pin.
type Direction int

// Pin directions.
const (
	In Direction = iota
	Out
)

// Edge selects the level transitions reported for an input pin.
type Edge int

// Edges.
const (
	EdgeNone Edge = iota
	EdgeBoth
)

// Change is a level change of an input pin.
type Change struct {
	Pin   int
	Value bool
}

// GPIO provides access to the header pins.
type GPIO interface {
	Setup(pin int, dir Direction, edge Edge) error
	Read(pin int) (bool, error)
	Write(pin int, value bool) error
	// Changes delivers level changes of pins set up with EdgeBoth.
	Changes() <-chan Change
	Close() error
}
