package device

import (
	"context"
	"time"

	"github.com/robotalks/petwant.go/pkg/msgs"
)

// request is a command waiting for the feeder's reply.
type request struct {
	expect   msgs.Kind
	entries  []*msgs.ScheduleEntry
	resultCh chan result
}

type result struct {
	entries []*msgs.ScheduleEntry
	err     error
}

func (r *request) resolve(entries []*msgs.ScheduleEntry, err error) {
	r.resultCh <- result{entries: entries, err: err}
}

// exchange sends msg and waits until the reply of kind expect is complete.
// Callers must hold cmdLock.
func (d *Device) exchange(ctx context.Context, msg msgs.Encoder, expect msgs.Kind, timeout time.Duration) ([]*msgs.ScheduleEntry, error) {
	req := &request{expect: expect, resultCh: make(chan result, 1)}
	err := d.call(ctx, func() error {
		if !d.connected {
			return ErrNotConnected
		}
		if err := d.send(msg); err != nil {
			return err
		}
		d.pending = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}
	select {
	case r := <-req.resultCh:
		return r.entries, r.err
	case <-ctx.Done():
		err = ctx.Err()
	case <-timeoutCh:
		err = ErrTimeout
	}
	// a reply arriving later is only reported as an event.
	d.call(context.Background(), func() error {
		if d.pending == req {
			d.pending = nil
		}
		return nil
	})
	// the reply may have completed while ctx was done.
	select {
	case r := <-req.resultCh:
		return r.entries, r.err
	default:
	}
	return nil, err
}

func (d *Device) setEntry(ctx context.Context, entry *msgs.ScheduleEntry) error {
	_, err := d.exchange(ctx, entry, msgs.KindOk, 0)
	return err
}

// SetScheduleEntry stores a schedule entry and waits for the feeder to accept it.
func (d *Device) SetScheduleEntry(ctx context.Context, hours, minutes, portions, entryIndex, soundIndex int, enabled bool) error {
	state := msgs.EntryDisabled
	if enabled {
		state = msgs.EntryEnabled
	}
	entry, err := msgs.NewScheduleEntry(hours, minutes, portions, state, entryIndex, soundIndex)
	if err != nil {
		return err
	}
	d.cmdLock.Lock()
	defer d.cmdLock.Unlock()
	return d.setEntry(ctx, entry)
}

// ClearSchedule disables all schedule entries.
func (d *Device) ClearSchedule(ctx context.Context) error {
	entry, err := msgs.NewScheduleEntry(0, 0, 0, msgs.EntryDisabled, 1, msgs.SoundNone)
	if err != nil {
		return err
	}
	d.cmdLock.Lock()
	defer d.cmdLock.Unlock()
	for index := 1; index <= msgs.ScheduleEntries; index++ {
		if err = entry.SetEntryIndex(index); err != nil {
			return err
		}
		if err = d.setEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// GetSchedule retrieves the schedule entries in the order the feeder sends them.
func (d *Device) GetSchedule(ctx context.Context) ([]*msgs.ScheduleEntry, error) {
	d.cmdLock.Lock()
	defer d.cmdLock.Unlock()
	return d.exchange(ctx, &msgs.ScheduleRequest{}, msgs.KindScheduleEntry, d.conf.ScheduleTimeout)
}

// FeedManually dispenses portions immediately.
func (d *Device) FeedManually(ctx context.Context, portions int) error {
	now := d.conf.now().UTC()
	entry, err := msgs.NewScheduleEntry(now.Hour(), now.Minute(), portions,
		msgs.EntryNow, msgs.EntryIndexNow, msgs.SoundNone)
	if err != nil {
		return err
	}
	d.cmdLock.Lock()
	defer d.cmdLock.Unlock()
	return d.setEntry(ctx, entry)
}
