package wire

import "errors"

var (
	// ErrTruncated indicates the stream ended in the middle of a frame.
	ErrTruncated = errors.New("truncated frame")
)
