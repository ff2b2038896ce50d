package device

import "errors"

var (
	// ErrGPIONotSetup indicates LED or button access before SetupGPIO.
	ErrGPIONotSetup = errors.New("GPIO setup not completed")
	// ErrNotConnected indicates a command issued before Connect.
	ErrNotConnected = errors.New("UART not connected")
	// ErrStopped indicates the session is no longer running.
	ErrStopped = errors.New("device stopped")
	// ErrTimeout indicates the feeder didn't reply in time.
	ErrTimeout = errors.New("timeout")
)
