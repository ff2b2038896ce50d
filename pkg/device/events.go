package device

import (
	"context"
	"fmt"
	"time"

	"github.com/robotalks/petwant.go/pkg/msgs"
	"github.com/robotalks/petwant.go/pkg/wire"
)

// EventKind identifies an event.
type EventKind int

// Event kinds.
const (
	EventButtonDown EventKind = iota + 1
	EventButtonUp
	EventButtonLongPress
	EventDateTimeUTC
	EventClockSynchronized
	EventScheduledFeedingStarted
	EventFeedingComplete
	EventWarningNoFood
	EventUnknownMessage
	EventCommandAccepted
	EventScheduleEntry
)

var eventNames = map[EventKind]string{
	EventButtonDown:              "buttondown",
	EventButtonUp:                "buttonup",
	EventButtonLongPress:         "buttonlongpress",
	EventDateTimeUTC:             "datetimeutc",
	EventClockSynchronized:       "clocksynchronized",
	EventScheduledFeedingStarted: "scheduledfeedingstarted",
	EventFeedingComplete:         "feedingcomplete",
	EventWarningNoFood:           "warningnofood",
	EventUnknownMessage:          "unknownmessage",
	EventCommandAccepted:         "commandaccepted",
	EventScheduleEntry:           "scheduleentry",
}

// EventKinds lists all kinds in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, 0, len(eventNames))
	for k := EventButtonDown; k <= EventScheduleEntry; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is emitted by the session. Only the fields of the kind are set.
type Event struct {
	Kind EventKind

	// EventButtonLongPress
	Elapsed time.Duration
	// EventDateTimeUTC
	Time time.Time
	// EventScheduledFeedingStarted
	EntryIndex int
	SoundIndex int
	// EventFeedingComplete
	Revolutions int
	// EventScheduleEntry
	Entry *msgs.ScheduleEntry
	// EventUnknownMessage
	Frame wire.Frame
	Err   error
}

// String implements fmt.Stringer.
func (e *Event) String() string {
	switch e.Kind {
	case EventButtonLongPress:
		return fmt.Sprintf("%s %dms", e.Kind, e.Elapsed.Milliseconds())
	case EventDateTimeUTC:
		return fmt.Sprintf("%s %s", e.Kind, e.Time.Format(time.RFC3339))
	case EventScheduledFeedingStarted:
		return fmt.Sprintf("%s entry=%d sound=%d", e.Kind, e.EntryIndex, e.SoundIndex)
	case EventFeedingComplete:
		return fmt.Sprintf("%s revolutions=%d", e.Kind, e.Revolutions)
	case EventScheduleEntry:
		return fmt.Sprintf("%s %s", e.Kind, e.Entry)
	case EventUnknownMessage:
		return fmt.Sprintf("%s %s", e.Kind, e.Frame)
	}
	return e.Kind.String()
}

// EventHandler receives events on the session goroutine.
// It must not call back into the Device synchronously.
type EventHandler interface {
	HandleEvent(context.Context, *Event)
}

// HandleEventFunc is func form of EventHandler.
type HandleEventFunc func(context.Context, *Event)

// HandleEvent implements EventHandler.
func (f HandleEventFunc) HandleEvent(ctx context.Context, ev *Event) {
	f(ctx, ev)
}

type handlerList []EventHandler

func (l handlerList) HandleEvent(ctx context.Context, ev *Event) {
	for _, h := range l {
		h.HandleEvent(ctx, ev)
	}
}

// Handlers fans an event out to multiple handlers in order. nil is skipped.
func Handlers(handlers ...EventHandler) EventHandler {
	var l handlerList
	for _, h := range handlers {
		if h != nil {
			l = append(l, h)
		}
	}
	return l
}
