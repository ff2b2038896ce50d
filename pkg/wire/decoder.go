package wire

import "io"

// Decoder splits a byte stream into frames.
// The zero value is ready to use.
type Decoder struct {
	state   decodeState
	buf     []byte
	length  byte
	recvLen byte
}

type decodeState int

const (
	stateFirstPreamble  decodeState = iota // waiting for 0xff
	stateSecondPreamble                    // waiting for 0xff or 0xfc
	stateType                              // waiting for message type
	stateLength                            // waiting for payload length
	statePayload                           // waiting for payload bytes
)

// Parse consumes one byte and returns a frame once it completes.
func (d *Decoder) Parse(b byte) Frame {
	switch d.state {
	case stateFirstPreamble:
		if b == PreambleFirst {
			d.buf = append(make([]byte, 0, HeaderSize), b)
			d.state = stateSecondPreamble
		}
	case stateSecondPreamble:
		// A rejected byte is never 0xff, so it can't start a new frame either.
		if b != PreambleSecond && b != PreambleSecondAlt {
			d.Reset()
			return nil
		}
		d.buf = append(d.buf, b)
		d.state = stateType
	case stateType:
		d.buf = append(d.buf, b)
		d.state = stateLength
	case stateLength:
		d.buf = append(d.buf, b)
		d.length, d.recvLen = b, 0
		if b == 0 {
			return d.frameReady()
		}
		d.state = statePayload
	case statePayload:
		d.buf = append(d.buf, b)
		d.recvLen++
		if d.recvLen >= d.length {
			return d.frameReady()
		}
	}
	return nil
}

// Feed consumes a chunk and returns all frames completed by it.
func (d *Decoder) Feed(p []byte) (frames []Frame) {
	for _, b := range p {
		if f := d.Parse(b); f != nil {
			frames = append(frames, f)
		}
	}
	return
}

// Flush is called at the end of stream. It returns nil, nil when no frame is
// in progress, otherwise the partial bytes with ErrTruncated.
// The decoder is reset in both cases.
func (d *Decoder) Flush() (Frame, error) {
	buf := d.buf
	d.Reset()
	if len(buf) == 0 {
		return nil, nil
	}
	return Frame(buf), ErrTruncated
}

// Reset drops the frame in progress.
func (d *Decoder) Reset() {
	d.state, d.buf, d.length, d.recvLen = stateFirstPreamble, nil, 0, 0
}

// Pending returns the number of bytes buffered for the frame in progress.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

func (d *Decoder) frameReady() Frame {
	f := Frame(d.buf)
	d.Reset()
	return f
}

// Reader pulls frames from an io.Reader lazily.
type Reader struct {
	r       io.Reader
	dec     Decoder
	chunk   []byte
	pending []Frame
	err     error
}

// DefaultChunkSize is the read buffer size used by NewReader.
const DefaultChunkSize = 64

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, chunk: make([]byte, DefaultChunkSize)}
}

// ReadFrame returns the next complete frame.
// When the underlying reader fails, frames already completed are returned
// first, then a truncated frame (if any) together with ErrTruncated, then the
// read error itself.
func (r *Reader) ReadFrame() (Frame, error) {
	for {
		if len(r.pending) > 0 {
			f := r.pending[0]
			r.pending = r.pending[1:]
			return f, nil
		}
		if r.err != nil {
			if f, err := r.dec.Flush(); err != nil {
				return f, err
			}
			return nil, r.err
		}
		n, err := r.r.Read(r.chunk)
		if n > 0 {
			r.pending = r.dec.Feed(r.chunk[:n])
		}
		if err != nil {
			r.err = err
		}
	}
}
