// Package serial provides the links to the feeder board.
package serial

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/net/websocket"

	"github.com/robotalks/petwant.go/pkg/device"
)

// DefaultBaud is the UART speed of the feeder board.
const DefaultBaud = 115200

// readPoll bounds a blocking UART read so Close is noticed by the reader.
const readPoll = 100 * time.Millisecond

// ErrNotOpen is returned by I/O on a port not opened yet.
var ErrNotOpen = errors.New("port not open")

// New creates a port from a URL, the port is opened by device.Connect.
//
//	/dev/serial0
//	serial:///dev/serial0?baud=115200
//	ws://host:port/path       remote serial bridge
func New(rawURL string) (device.Port, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "", "serial":
		baud := DefaultBaud
		if val := u.Query().Get("baud"); val != "" {
			if baud, err = strconv.Atoi(val); err != nil || baud <= 0 {
				return nil, fmt.Errorf("invalid baud %q", val)
			}
		}
		return NewUART(u.Path, baud), nil
	case "ws", "wss":
		return &WebSocket{URL: rawURL}, nil
	}
	return nil, fmt.Errorf("unsupported port scheme %q", u.Scheme)
}

// UART is a local serial port, 8N1 without flow control.
// Reads wake up every readPoll, so a reader blocked in Read returns
// shortly after Close.
type UART struct {
	Config serial.Config

	lock sync.RWMutex
	port io.ReadWriteCloser
}

// NewUART creates a UART.
func NewUART(name string, baud int) *UART {
	return &UART{Config: serial.Config{
		Name:        name,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: readPoll,
	}}
}

// Open implements device.Port.
func (u *UART) Open() error {
	port, err := serial.OpenPort(&u.Config)
	if err != nil {
		return err
	}
	u.lock.Lock()
	u.port = port
	u.lock.Unlock()
	return nil
}

func (u *UART) opened() io.ReadWriteCloser {
	u.lock.RLock()
	defer u.lock.RUnlock()
	return u.port
}

// Read implements io.Reader. It blocks until data arrives or the port is closed.
func (u *UART) Read(p []byte) (int, error) {
	for {
		port := u.opened()
		if port == nil {
			return 0, ErrNotOpen
		}
		n, err := port.Read(p)
		// an expired read timeout shows up as an empty read.
		if n == 0 && (err == nil || err == io.EOF) {
			continue
		}
		return n, err
	}
}

// Write implements io.Writer.
func (u *UART) Write(p []byte) (int, error) {
	if port := u.opened(); port != nil {
		return port.Write(p)
	}
	return 0, ErrNotOpen
}

// Close implements io.Closer.
func (u *UART) Close() error {
	u.lock.Lock()
	port := u.port
	u.port = nil
	u.lock.Unlock()
	if port != nil {
		return port.Close()
	}
	return nil
}

// WebSocket reaches the UART through a remote bridge forwarding raw bytes
// as binary messages.
type WebSocket struct {
	URL string
	// Origin defaults to http://localhost/.
	Origin string

	lock sync.RWMutex
	conn *websocket.Conn
}

// Open implements device.Port.
func (w *WebSocket) Open() error {
	origin := w.Origin
	if origin == "" {
		origin = "http://localhost/"
	}
	conn, err := websocket.Dial(w.URL, "", origin)
	if err != nil {
		return err
	}
	conn.PayloadType = websocket.BinaryFrame
	w.lock.Lock()
	w.conn = conn
	w.lock.Unlock()
	return nil
}

func (w *WebSocket) opened() *websocket.Conn {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.conn
}

// Read implements io.Reader.
func (w *WebSocket) Read(p []byte) (int, error) {
	if conn := w.opened(); conn != nil {
		return conn.Read(p)
	}
	return 0, ErrNotOpen
}

// Write implements io.Writer.
func (w *WebSocket) Write(p []byte) (int, error) {
	if conn := w.opened(); conn != nil {
		return conn.Write(p)
	}
	return 0, ErrNotOpen
}

// Close implements io.Closer.
func (w *WebSocket) Close() error {
	w.lock.Lock()
	conn := w.conn
	w.conn = nil
	w.lock.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}
