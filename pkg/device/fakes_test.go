package device

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/petwant.go/pkg/wire"
)

const testTimeout = 500 * time.Millisecond

type fakePort struct {
	readCh   chan []byte
	writeCh  chan []byte
	openErr  error
	writeErr error

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		readCh:  make(chan []byte),
		writeCh: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (p *fakePort) Open() error {
	return p.openErr
}

func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case data, ok := <-p.readCh:
		if !ok {
			return 0, io.EOF
		}
		return copy(b, data), nil
	case <-p.closed:
		return 0, io.EOF
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.writeCh <- append([]byte(nil), b...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

type fakeGPIO struct {
	lock    sync.Mutex
	levels  map[int]bool
	dirs    map[int]Direction
	readErr error
	changes chan Change
	writes  chan Change
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		levels:  make(map[int]bool),
		dirs:    make(map[int]Direction),
		changes: make(chan Change),
		writes:  make(chan Change, 64),
	}
}

func (g *fakeGPIO) Setup(pin int, dir Direction, edge Edge) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.dirs[pin] = dir
	g.levels[pin] = true
	return nil
}

func (g *fakeGPIO) Read(pin int) (bool, error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.readErr != nil {
		return false, g.readErr
	}
	return g.levels[pin], nil
}

func (g *fakeGPIO) Write(pin int, value bool) error {
	g.lock.Lock()
	g.levels[pin] = value
	g.lock.Unlock()
	select {
	case g.writes <- Change{Pin: pin, Value: value}:
	default:
	}
	return nil
}

func (g *fakeGPIO) Changes() <-chan Change {
	return g.changes
}

func (g *fakeGPIO) Close() error {
	return nil
}

func (g *fakeGPIO) level(pin int) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.levels[pin]
}

func (g *fakeGPIO) setLevel(pin int, value bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.levels[pin] = value
}

func (g *fakeGPIO) failReads(err error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.readErr = err
}

type fakeClock struct {
	lock sync.Mutex
	t    time.Time
}

func (c *fakeClock) Time() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.t = c.t.Add(d)
}

var testEpoch = time.Date(2019, time.June, 30, 8, 15, 0, 0, time.UTC)

type deviceTestEnv struct {
	t      *testing.T
	port   *fakePort
	gpio   *fakeGPIO
	clock  *fakeClock
	dev    *Device
	events chan *Event
	cancel context.CancelFunc
	runErr chan error
}

func newDeviceTestEnv(t *testing.T, configure ...func(*Config)) *deviceTestEnv {
	env := &deviceTestEnv{
		t:      t,
		port:   newFakePort(),
		gpio:   newFakeGPIO(),
		clock:  &fakeClock{t: testEpoch},
		events: make(chan *Event, 64),
		runErr: make(chan error, 1),
	}
	conf := DefaultConfig()
	conf.Clock = env.clock
	for _, fn := range configure {
		fn(&conf)
	}
	env.dev = New(env.port, env.gpio, conf)
	env.dev.Handler = HandleEventFunc(func(ctx context.Context, ev *Event) {
		env.events <- ev
	})
	return env
}

func (e *deviceTestEnv) run() *deviceTestEnv {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go func() {
		e.runErr <- e.dev.Run(ctx)
	}()
	e.t.Cleanup(func() {
		cancel()
		e.dev.Close()
	})
	return e
}

func (e *deviceTestEnv) ready() *deviceTestEnv {
	e.run()
	require.NoError(e.t, e.dev.SetupGPIO(context.Background()))
	require.NoError(e.t, e.dev.Connect(context.Background()))
	return e
}

func (e *deviceTestEnv) inject(f wire.Frame) {
	select {
	case e.port.readCh <- f:
	case <-time.After(testTimeout):
		e.t.Fatalf("inject %s: timeout", f)
	}
}

func (e *deviceTestEnv) press(value bool) {
	select {
	case e.gpio.changes <- Change{Pin: e.dev.conf.ButtonPin, Value: value}:
	case <-time.After(testTimeout):
		e.t.Fatal("button change: timeout")
	}
}

func (e *deviceTestEnv) expectWrite(expected wire.Frame) {
	select {
	case b := <-e.port.writeCh:
		require.Equalf(e.t, expected, wire.Frame(b), "write mismatch: %s", wire.Frame(b))
	case <-time.After(testTimeout):
		e.t.Fatalf("expect write %s: timeout", expected)
	}
}

func (e *deviceTestEnv) expectNoWrite() {
	select {
	case b := <-e.port.writeCh:
		e.t.Fatalf("unexpected write %s", wire.Frame(b))
	case <-time.After(50 * time.Millisecond):
	}
}

func (e *deviceTestEnv) expectEvent(kind EventKind) *Event {
	select {
	case ev := <-e.events:
		require.Equalf(e.t, kind, ev.Kind, "unexpected event %s", ev)
		return ev
	case <-time.After(testTimeout):
		e.t.Fatalf("expect event %s: timeout", kind)
	}
	return nil
}

func (e *deviceTestEnv) expectStopped() error {
	select {
	case err := <-e.runErr:
		return err
	case <-time.After(testTimeout):
		e.t.Fatal("Run didn't stop")
	}
	return nil
}

func async(fn func() error) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	return errCh
}

func waitErr(t *testing.T, errCh <-chan error) error {
	select {
	case err := <-errCh:
		return err
	case <-time.After(testTimeout):
		t.Fatal("timeout")
	}
	return nil
}
