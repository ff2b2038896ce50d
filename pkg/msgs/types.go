package msgs

import "github.com/robotalks/petwant.go/pkg/wire"

// Message is a decoded or to-be-encoded feeder message.
type Message interface {
	Kind() Kind
	String() string
}

// Encoder is implemented by messages which can be sent to the feeder.
type Encoder interface {
	Message
	Encode() wire.Frame
}

// Kind identifies the message variant.
type Kind int

// Message kinds.
const (
	KindPing Kind = iota + 1
	KindPingResponse
	KindDateTime
	KindDateTimeSet
	KindScheduleRequest
	KindScheduleEntry
	KindOk
	KindWarningNoFood
	KindMotorStatus
	KindScheduledFeedingStarted
)

var kindNames = map[Kind]string{
	KindPing:                    "Ping",
	KindPingResponse:            "PingResponse",
	KindDateTime:                "DateTime",
	KindDateTimeSet:             "DateTimeSet",
	KindScheduleRequest:         "ScheduleRequest",
	KindScheduleEntry:           "ScheduleEntry",
	KindOk:                      "Ok",
	KindWarningNoFood:           "WarningNoFood",
	KindMotorStatus:             "MotorStatus",
	KindScheduledFeedingStarted: "ScheduledFeedingStarted",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Wire types.
const (
	TypeCommand        byte = 0x01 // Ok reply, outgoing ScheduleEntry
	TypeSchedule       byte = 0x02 // ScheduleRequest, ScheduleEntry reply
	TypeNoFood         byte = 0x05
	TypeClock          byte = 0x06 // Ping, DateTime, DateTimeSet
	TypeFeeding        byte = 0x07 // ScheduleEntry echoed when feeding is done
	TypePingResponse   byte = 0x09
	TypeFeedingStarted byte = 0x0c
	TypeMotorStatus    byte = 0xf0
)

// Payload lengths.
const (
	LenShort         = 1
	LenDateTime      = 6
	LenScheduleEntry = 10
)

// Single byte payloads.
const (
	dataPing        byte = 0xaa
	dataDateTimeSet byte = 0x01
	dataOk          byte = 0x01
	dataNoFood      byte = 0x02
	dataRequest     byte = 0x00
)
