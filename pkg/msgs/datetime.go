package msgs

import (
	"time"

	"github.com/robotalks/petwant.go/pkg/wire"
)

// The feeder counts years from 1960 in a single byte.
const (
	BaseYear = 1960
	MaxYear  = BaseYear + 0xff
)

// DateTime carries the feeder clock in UTC with second precision.
type DateTime struct {
	t time.Time
}

// NewDateTime creates a DateTime, t is converted to UTC.
func NewDateTime(t time.Time) (*DateTime, error) {
	t = t.UTC().Truncate(time.Second)
	if err := checkRange("year", t.Year(), BaseYear, MaxYear); err != nil {
		return nil, err
	}
	return &DateTime{t: t}, nil
}

// Kind implements Message.
func (m *DateTime) Kind() Kind { return KindDateTime }

// Time returns the UTC time.
func (m *DateTime) Time() time.Time { return m.t }

// Encode implements Encoder.
func (m *DateTime) Encode() wire.Frame {
	return wire.NewFrame(TypeClock,
		byte(m.t.Year()-BaseYear),
		byte(m.t.Month()),
		byte(m.t.Day()),
		byte(m.t.Hour()),
		byte(m.t.Minute()),
		byte(m.t.Second()))
}

// String implements Message.
func (m *DateTime) String() string {
	return "UTC DateTime: " + m.t.Format(time.RFC1123)
}

func decodeDateTime(data []byte) (*DateTime, error) {
	year := BaseYear + int(data[0])
	month, day := int(data[1]), int(data[2])
	hour, minute, second := int(data[3]), int(data[4]), int(data[5])
	if err := checkRange("month", month, 1, 12); err != nil {
		return nil, err
	}
	if err := checkRange("day", day, 1, daysIn(time.Month(month), year)); err != nil {
		return nil, err
	}
	if err := checkRange("hour", hour, 0, 23); err != nil {
		return nil, err
	}
	if err := checkRange("minute", minute, 0, 59); err != nil {
		return nil, err
	}
	if err := checkRange("second", second, 0, 59); err != nil {
		return nil, err
	}
	return NewDateTime(time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC))
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
