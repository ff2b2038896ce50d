package wire

import (
	"encoding/hex"
	"fmt"
)

// Preamble bytes.
const (
	PreambleFirst     byte = 0xff
	PreambleSecond    byte = 0xff
	PreambleSecondAlt byte = 0xfc
)

// HeaderSize is the size of preamble, type and length.
const HeaderSize = 4

// Frame is one raw frame including its header.
// A Frame shorter than HeaderSize+Len() is truncated and must not be decoded.
type Frame []byte

// NewFrame builds an outgoing frame with the default preamble.
func NewFrame(typ byte, payload ...byte) Frame {
	f := make(Frame, HeaderSize+len(payload))
	f[0], f[1], f[2], f[3] = PreambleFirst, PreambleSecond, typ, byte(len(payload))
	copy(f[HeaderSize:], payload)
	return f
}

// Type returns the message type byte, 0 if the header is incomplete.
func (f Frame) Type() byte {
	if len(f) < HeaderSize {
		return 0
	}
	return f[2]
}

// Len returns the declared payload length, 0 if the header is incomplete.
func (f Frame) Len() int {
	if len(f) < HeaderSize {
		return 0
	}
	return int(f[3])
}

// Payload returns the received payload bytes.
func (f Frame) Payload() []byte {
	if len(f) < HeaderSize {
		return nil
	}
	return f[HeaderSize:]
}

// IsComplete tells whether the frame carries a valid preamble, a full header
// and exactly the declared number of payload bytes.
func (f Frame) IsComplete() bool {
	if len(f) < HeaderSize || f[0] != PreambleFirst {
		return false
	}
	if f[1] != PreambleSecond && f[1] != PreambleSecondAlt {
		return false
	}
	return len(f)-HeaderSize == int(f[3])
}

// String implements fmt.Stringer.
func (f Frame) String() string {
	if len(f) < HeaderSize {
		return fmt.Sprintf("frame(truncated %s)", hex.EncodeToString(f))
	}
	return fmt.Sprintf("frame(type=%02x len=%d data=%s)", f.Type(), f.Len(), hex.EncodeToString(f.Payload()))
}
