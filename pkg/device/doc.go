// Package device implements the session with a Petwant feeder.
//
// A Device owns the serial port and the GPIO pins of the feeder board.
// All session state lives in the goroutine running Device.Run; the other
// methods hand their work over to it and wait for the result.
package device
