// Package msgs maps Petwant frames to typed messages and back.
//
// Decode returns one of the concrete message types in this package behind
// the Message interface; consumers switch on the concrete type (or on Kind).
// Messages are validated on construction, so a Message value is always
// within range. Only messages sent to the feeder implement Encoder.
package msgs
