package msgs

import (
	"fmt"

	"github.com/robotalks/petwant.go/pkg/wire"
)

// Decode maps a complete frame to a Message.
// All failures are reported as *UnknownMessageError carrying the frame.
func Decode(f wire.Frame) (Message, error) {
	if !f.IsComplete() {
		return nil, &UnknownMessageError{Reason: "incomplete frame", Frame: f}
	}
	msg, err := decodeFrame(f)
	if err != nil {
		if unknown, ok := err.(*UnknownMessageError); ok {
			return nil, unknown
		}
		return nil, &UnknownMessageError{
			Reason: fmt.Sprintf("invalid data for type %d", f.Type()),
			Frame:  f,
			Err:    err,
		}
	}
	return msg, nil
}

func decodeFrame(f wire.Frame) (Message, error) {
	typ, data := f.Type(), f.Payload()
	switch typ {
	case TypeCommand:
		if len(data) != LenShort {
			return nil, unknownLength(f)
		}
		if data[0] != dataOk {
			return nil, unknownData(f)
		}
		return &Ok{}, nil
	case TypeSchedule, TypeFeeding:
		// TypeFeeding echoes the entry a feeding was started with.
		if len(data) != LenScheduleEntry {
			return nil, unknownLength(f)
		}
		return decodeScheduleEntry(data)
	case TypeNoFood:
		if len(data) != LenShort {
			return nil, unknownLength(f)
		}
		if data[0] != dataNoFood {
			return nil, unknownData(f)
		}
		return &WarningNoFood{}, nil
	case TypeClock:
		switch len(data) {
		case LenShort:
			switch data[0] {
			case dataPing:
				return &Ping{}, nil
			case dataDateTimeSet:
				return &DateTimeSet{}, nil
			}
			return nil, unknownData(f)
		case LenDateTime:
			return decodeDateTime(data)
		}
		return nil, unknownLength(f)
	case TypeMotorStatus:
		if len(data) != LenShort {
			return nil, unknownLength(f)
		}
		return NewMotorStatus(int(data[0]))
	case TypeFeedingStarted:
		if len(data) != LenShort {
			return nil, unknownLength(f)
		}
		return NewScheduledFeedingStarted(int(data[0]>>4), int(data[0]&0x0f))
	}
	return nil, &UnknownMessageError{Reason: "unknown message type", Frame: f}
}

func unknownLength(f wire.Frame) error {
	return &UnknownMessageError{Reason: fmt.Sprintf("unknown message length for type %d", f.Type()), Frame: f}
}

func unknownData(f wire.Frame) error {
	return &UnknownMessageError{Reason: fmt.Sprintf("unknown message data for type %d", f.Type()), Frame: f}
}
