package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/petwant.go/pkg/framework"
	"github.com/robotalks/petwant.go/pkg/msgs"
	"github.com/robotalks/petwant.go/pkg/wire"
)

// Device is the session with one feeder.
type Device struct {
	// Handler receives the events. It must be set before Run.
	Handler EventHandler

	port Port
	gpio GPIO
	conf Config

	callCh  chan func()
	frameCh chan wire.Frame
	readErr chan error
	done    chan struct{}

	// cmdLock serializes command exchanges.
	cmdLock sync.Mutex

	// The fields below are only accessed by Run.
	gpioReady   bool
	connected   bool
	changes     <-chan Change
	lastPressed time.Time
	blinkPower  bool
	blinkLink   bool
	blinkTicker *time.Ticker
	pending     *request
	fault       error
}

// New creates a Device.
func New(port Port, gpio GPIO, conf Config) *Device {
	if conf.BlinkInterval <= 0 {
		conf.BlinkInterval = DefaultConfig().BlinkInterval
	}
	return &Device{
		port:        port,
		gpio:        gpio,
		conf:        conf,
		callCh:      make(chan func()),
		frameCh:     make(chan wire.Frame, 16),
		readErr:     make(chan error, 1),
		done:        make(chan struct{}),
		lastPressed: conf.now(),
	}
}

// Name implements framework.Named.
func (d *Device) Name() string {
	return "device"
}

// Done is closed when Run exits.
func (d *Device) Done() <-chan struct{} {
	return d.done
}

// Run runs the session until ctx is cancelled or a hardware fault happens.
// It must be called only once, the other methods block until it runs.
func (d *Device) Run(ctx context.Context) error {
	defer d.stop()
	for {
		var blinkCh <-chan time.Time
		if d.blinkTicker != nil {
			blinkCh = d.blinkTicker.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-d.callCh:
			fn()
		case f := <-d.frameCh:
			d.handleFrame(ctx, f)
		case err := <-d.readErr:
			d.failed(fmt.Errorf("serial read: %w", err))
		case c, ok := <-d.changes:
			if !ok {
				d.changes = nil
				break
			}
			d.handleChange(ctx, c)
		case <-blinkCh:
			d.blinkTick()
		}
		if d.fault != nil {
			glog.Errorf("device fault: %v", d.fault)
			return d.fault
		}
	}
}

func (d *Device) stop() {
	if d.blinkTicker != nil {
		d.blinkTicker.Stop()
		d.blinkTicker = nil
	}
	if req := d.pending; req != nil {
		d.pending = nil
		req.resolve(nil, ErrStopped)
	}
	close(d.done)
}

// call runs fn on the session goroutine.
func (d *Device) call(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	select {
	case d.callCh <- func() { errCh <- fn() }:
		return <-errCh
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Device) failed(err error) {
	if d.fault == nil {
		d.fault = err
	}
}

// SetupGPIO configures the LED and button pins. It's a no-op once succeeded.
func (d *Device) SetupGPIO(ctx context.Context) error {
	return d.call(ctx, func() error {
		if d.gpioReady {
			return nil
		}
		pins := []struct {
			pin  int
			dir  Direction
			edge Edge
		}{
			{d.conf.PowerLEDPin, Out, EdgeNone},
			{d.conf.LinkLEDPin, Out, EdgeNone},
			{d.conf.ButtonPin, In, EdgeBoth},
		}
		for _, p := range pins {
			if err := d.gpio.Setup(p.pin, p.dir, p.edge); err != nil {
				return fmt.Errorf("setup pin %d: %w", p.pin, err)
			}
		}
		d.gpioReady = true
		d.changes = d.gpio.Changes()
		glog.Infof("GPIO ready: power LED %d, link LED %d, button %d",
			d.conf.PowerLEDPin, d.conf.LinkLEDPin, d.conf.ButtonPin)
		return nil
	})
}

// Connect opens the serial port and starts receiving. It's a no-op once succeeded.
func (d *Device) Connect(ctx context.Context) error {
	return d.call(ctx, func() error {
		if d.connected {
			return nil
		}
		if err := d.port.Open(); err != nil {
			return err
		}
		d.connected = true
		go d.readLoop(wire.NewReader(d.port))
		glog.Info("UART connected")
		return nil
	})
}

// Close releases the GPIO pins and the serial port.
func (d *Device) Close() error {
	var errs framework.AggregatedError
	errs.Add(d.gpio.Close(), d.port.Close())
	return errs.Aggregate()
}

func (d *Device) readLoop(r *wire.Reader) {
	for {
		f, err := r.ReadFrame()
		if err == wire.ErrTruncated {
			glog.Warningf("drop truncated frame %s", f)
			continue
		}
		if err != nil {
			select {
			case d.readErr <- err:
			case <-d.done:
			}
			return
		}
		glog.V(4).Infof("RECV %s", f)
		select {
		case d.frameCh <- f:
		case <-d.done:
			return
		}
	}
}

func (d *Device) send(msg msgs.Encoder) error {
	f := msg.Encode()
	glog.V(2).Infof("SEND %s: %s", msg, f)
	if _, err := d.port.Write(f); err != nil {
		err = fmt.Errorf("serial write: %w", err)
		d.failed(err)
		return err
	}
	return nil
}

func (d *Device) emit(ctx context.Context, ev *Event) {
	glog.V(2).Infof("EVENT %s", ev)
	if h := d.Handler; h != nil {
		h.HandleEvent(ctx, ev)
	}
}

func (d *Device) handleFrame(ctx context.Context, f wire.Frame) {
	msg, err := msgs.Decode(f)
	if err != nil {
		glog.Warning(err)
		d.emit(ctx, &Event{Kind: EventUnknownMessage, Frame: f, Err: err})
		return
	}
	glog.V(2).Infof("RECV %s", msg)
	switch m := msg.(type) {
	case *msgs.Ping:
		d.send(&msgs.PingResponse{})
	case *msgs.DateTime:
		d.emit(ctx, &Event{Kind: EventDateTimeUTC, Time: m.Time()})
		d.syncClock(m.Time())
	case *msgs.DateTimeSet:
		d.emit(ctx, &Event{Kind: EventClockSynchronized})
	case *msgs.ScheduleEntry:
		d.emit(ctx, &Event{Kind: EventScheduleEntry, Entry: m})
		if req := d.pending; req != nil && req.expect == msgs.KindScheduleEntry {
			req.entries = append(req.entries, m)
			if len(req.entries) == msgs.ScheduleEntries {
				d.pending = nil
				req.resolve(req.entries, nil)
			}
		}
	case *msgs.Ok:
		d.emit(ctx, &Event{Kind: EventCommandAccepted})
		if req := d.pending; req != nil && req.expect == msgs.KindOk {
			d.pending = nil
			req.resolve(nil, nil)
		}
	case *msgs.ScheduledFeedingStarted:
		d.emit(ctx, &Event{
			Kind:       EventScheduledFeedingStarted,
			EntryIndex: m.EntryIndex(),
			SoundIndex: m.SoundIndex(),
		})
	case *msgs.MotorStatus:
		d.emit(ctx, &Event{Kind: EventFeedingComplete, Revolutions: m.RevolutionsDone()})
	case *msgs.WarningNoFood:
		d.emit(ctx, &Event{Kind: EventWarningNoFood})
	default:
		d.emit(ctx, &Event{
			Kind:  EventUnknownMessage,
			Frame: f,
			Err:   fmt.Errorf("unexpected message %s", msg.Kind()),
		})
	}
}

func (d *Device) syncClock(deviceTime time.Time) {
	now := d.conf.now().UTC()
	drift := now.Sub(deviceTime)
	if drift < 0 {
		drift = -drift
	}
	if drift <= d.conf.MaxDrift {
		return
	}
	dt, err := msgs.NewDateTime(now)
	if err != nil {
		glog.Errorf("can't fix feeder clock: %v", err)
		return
	}
	glog.Infof("feeder clock drifted %v, fixing", drift)
	d.send(dt)
}

func (d *Device) handleChange(ctx context.Context, c Change) {
	if c.Pin != d.conf.ButtonPin {
		return
	}
	// the button is active low.
	now := d.conf.now()
	elapsed := now.Sub(d.lastPressed)
	switch {
	case !c.Value && elapsed >= DebounceInterval:
		d.lastPressed = now
		d.emit(ctx, &Event{Kind: EventButtonDown})
	case !c.Value:
		glog.V(4).Infof("button bounce after %v", elapsed)
	case elapsed >= LongPressDuration:
		d.emit(ctx, &Event{Kind: EventButtonLongPress, Elapsed: elapsed})
	default:
		d.emit(ctx, &Event{Kind: EventButtonUp})
	}
}
