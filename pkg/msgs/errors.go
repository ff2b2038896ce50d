package msgs

import (
	"fmt"

	"github.com/robotalks/petwant.go/pkg/wire"
)

// ParamError indicates a message field out of range.
type ParamError struct {
	Param  string
	Value  interface{}
	Expect string
}

// Error implements error.
func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q is incorrect (%v), it must be %s", e.Param, e.Value, e.Expect)
}

func checkRange(param string, val, min, max int) error {
	if val < min || val > max {
		return &ParamError{Param: param, Value: val, Expect: fmt.Sprintf("from %d to %d", min, max)}
	}
	return nil
}

// UnknownMessageError indicates a frame which doesn't map to any message.
type UnknownMessageError struct {
	Reason string
	Frame  wire.Frame
	Err    error
}

// Error implements error.
func (e *UnknownMessageError) Error() string {
	msg := "unknown message: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + " " + e.Frame.String()
}

// Unwrap returns the validation error, if any.
func (e *UnknownMessageError) Unwrap() error {
	return e.Err
}
