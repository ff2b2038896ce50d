package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

var tableFrames = []Frame{
	{0xff, 0xff, 0x06, 0x01, 0xaa},                                     // ping
	{0xff, 0xfc, 0x06, 0x01, 0x01},                                     // date time set
	{0xff, 0xff, 0x06, 0x06, 0x3c, 0x0a, 0x0f, 0x0c, 0x1e, 0x00},       // date time
	{0xff, 0xff, 0x02, 0x0a, 0, 0, 0, 0x10, 0x00, 0x14, 0, 0x11, 2, 3}, // schedule entry
	{0xff, 0xff, 0x07, 0x0a, 0, 0, 0, 0x08, 0x1e, 0x0a, 0, 0x01, 0, 10},
	{0xff, 0xff, 0x01, 0x01, 0x01},                                     // ok
	{0xff, 0xff, 0x05, 0x01, 0x02},                                     // no food
	{0xff, 0xff, 0xf0, 0x01, 0x05},                                     // motor status
	{0xff, 0xff, 0x0c, 0x01, 0x2a},                                     // feeding started
}

func TestDecoderSingleFrames(t *testing.T) {
	for _, f := range tableFrames {
		t.Run(f.String(), func(t *testing.T) {
			var d Decoder
			frames := d.Feed(f)
			require.Len(t, frames, 1)
			require.Equal(t, f, frames[0])
			require.True(t, frames[0].IsComplete())
			require.Zero(t, d.Pending())
		})
	}
}

func TestDecoderBoundaryIndependence(t *testing.T) {
	for _, f := range tableFrames {
		var whole Decoder
		expected := whole.Feed(f)
		require.Len(t, expected, 1)

		for split := 1; split < len(f); split++ {
			var d Decoder
			frames := d.Feed(f[:split])
			require.Emptyf(t, frames, "%s split at %d", f, split)
			frames = d.Feed(f[split:])
			require.Equalf(t, expected, frames, "%s split at %d", f, split)
		}

		var d Decoder
		var frames []Frame
		for _, b := range f {
			if got := d.Parse(b); got != nil {
				frames = append(frames, got)
			}
		}
		require.Equalf(t, expected, frames, "%s byte by byte", f)
	}
}

func TestDecoderStream(t *testing.T) {
	var stream []byte
	for _, f := range tableFrames {
		stream = append(stream, f...)
	}
	var d Decoder
	require.Equal(t, tableFrames, d.Feed(stream))
}

func TestDecoderResync(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		expect []Frame
	}{
		{
			name:   "skip garbage",
			in:     []byte{0x00, 0x12, 0xfe, 0xff, 0xff, 0x01, 0x01, 0x01},
			expect: []Frame{{0xff, 0xff, 0x01, 0x01, 0x01}},
		},
		{
			name:   "bad second preamble",
			in:     []byte{0xff, 0x00, 0x01, 0x01, 0x01, 0xff, 0xfc, 0x05, 0x01, 0x02},
			expect: []Frame{{0xff, 0xfc, 0x05, 0x01, 0x02}},
		},
		{
			name:   "repeated first preamble",
			in:     []byte{0xff, 0xff, 0xff, 0x01, 0x01},
			expect: []Frame{{0xff, 0xff, 0xff, 0x01, 0x01}},
		},
		{
			name:   "zero length",
			in:     []byte{0xff, 0xff, 0x09, 0x00, 0xff, 0xff, 0x01, 0x01, 0x01},
			expect: []Frame{{0xff, 0xff, 0x09, 0x00}, {0xff, 0xff, 0x01, 0x01, 0x01}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d Decoder
			require.Equal(t, tc.expect, d.Feed(tc.in))
		})
	}
}

func TestDecoderFlush(t *testing.T) {
	t.Run("nothing buffered", func(t *testing.T) {
		var d Decoder
		d.Feed([]byte{0x00, 0x01})
		f, err := d.Flush()
		require.NoError(t, err)
		require.Nil(t, f)
	})
	t.Run("truncated", func(t *testing.T) {
		var d Decoder
		d.Feed([]byte{0xff, 0xff, 0x06, 0x06, 0x3c})
		f, err := d.Flush()
		require.Equal(t, ErrTruncated, err)
		require.Equal(t, Frame{0xff, 0xff, 0x06, 0x06, 0x3c}, f)
		require.False(t, f.IsComplete())
		require.Zero(t, d.Pending())

		f, err = d.Flush()
		require.NoError(t, err)
		require.Nil(t, f)
	})
	t.Run("decoder reusable after flush", func(t *testing.T) {
		var d Decoder
		d.Feed([]byte{0xff, 0xff})
		d.Flush()
		require.Equal(t, []Frame{tableFrames[0]}, d.Feed(tableFrames[0]))
	})
}

type oneByteReader struct {
	data []byte
	err  error
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	p[0], r.data = r.data[0], r.data[1:]
	return 1, nil
}

func TestReader(t *testing.T) {
	var stream []byte
	for _, f := range tableFrames {
		stream = append(stream, f...)
	}

	t.Run("chunked", func(t *testing.T) {
		r := NewReader(bytes.NewReader(stream))
		for _, f := range tableFrames {
			got, err := r.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, f, got)
		}
		_, err := r.ReadFrame()
		require.Equal(t, io.EOF, err)
	})

	t.Run("one byte at a time", func(t *testing.T) {
		r := NewReader(&oneByteReader{data: stream, err: io.EOF})
		for _, f := range tableFrames {
			got, err := r.ReadFrame()
			require.NoError(t, err)
			require.Equal(t, f, got)
		}
		_, err := r.ReadFrame()
		require.Equal(t, io.EOF, err)
	})

	t.Run("truncated tail", func(t *testing.T) {
		broken := errors.New("broken")
		data := append(append([]byte{}, tableFrames[0]...), 0xff, 0xff, 0x01)
		r := NewReader(&oneByteReader{data: data, err: broken})
		got, err := r.ReadFrame()
		require.NoError(t, err)
		require.Equal(t, tableFrames[0], got)
		got, err = r.ReadFrame()
		require.Equal(t, ErrTruncated, err)
		require.Equal(t, Frame{0xff, 0xff, 0x01}, got)
		_, err = r.ReadFrame()
		require.Equal(t, broken, err)
	})
}

func TestFrame(t *testing.T) {
	f := NewFrame(0x09, 0x00)
	require.Equal(t, Frame{0xff, 0xff, 0x09, 0x01, 0x00}, f)
	require.Equal(t, byte(0x09), f.Type())
	require.Equal(t, 1, f.Len())
	require.Equal(t, []byte{0x00}, f.Payload())
	require.True(t, f.IsComplete())

	require.False(t, Frame{0xff, 0xff, 0x01}.IsComplete())
	require.False(t, Frame{0xff, 0xff, 0x01, 0x02, 0x00}.IsComplete())
	require.False(t, Frame{0xff, 0x00, 0x01, 0x00}.IsComplete())
	require.Zero(t, Frame{0xff}.Len())
	require.Nil(t, Frame{0xff}.Payload())
}
