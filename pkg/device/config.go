package device

import (
	"time"

	"github.com/robotalks/petwant.go/pkg/framework"
)

// Button timing.
const (
	DebounceInterval  = 100 * time.Millisecond
	LongPressDuration = 3000 * time.Millisecond
)

// Config defines the board wiring and session parameters.
type Config struct {
	// Physical header pin numbers.
	PowerLEDPin int
	LinkLEDPin  int
	ButtonPin   int
	// MaxDrift is the clock difference tolerated before the feeder clock is fixed.
	MaxDrift      time.Duration
	BlinkInterval time.Duration
	// ScheduleTimeout bounds GetSchedule, 0 waits forever.
	ScheduleTimeout time.Duration
	// Clock is the local time source, defaults to the system clock.
	Clock framework.TimeSource
}

// DefaultConfig returns the wiring of the stock Petwant board.
func DefaultConfig() Config {
	return Config{
		PowerLEDPin:     16,
		LinkLEDPin:      18,
		ButtonPin:       22,
		MaxDrift:        10 * time.Second,
		BlinkInterval:   500 * time.Millisecond,
		ScheduleTimeout: 5 * time.Second,
	}
}

func (c *Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Time()
	}
	return time.Now()
}
