package mqtt

import (
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/petwant.go/pkg/device"
	"github.com/robotalks/petwant.go/pkg/msgs"
)

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func stringValue(v string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}
}

func boolValue(v bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}
}

// EntryStruct converts a schedule entry.
func EntryStruct(e *msgs.ScheduleEntry) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"hours":      numberValue(float64(e.Hours())),
		"minutes":    numberValue(float64(e.Minutes())),
		"portions":   numberValue(float64(e.Portions())),
		"entryIndex": numberValue(float64(e.EntryIndex())),
		"soundIndex": numberValue(float64(e.SoundIndex())),
		"enabled":    boolValue(e.Enabled()),
		"state":      stringValue(e.State().String()),
	}}
}

func scheduleValue(entries []*msgs.ScheduleEntry) *structpb.Value {
	list := &structpb.ListValue{}
	for _, e := range entries {
		list.Values = append(list.Values, &structpb.Value{
			Kind: &structpb.Value_StructValue{StructValue: EntryStruct(e)},
		})
	}
	return &structpb.Value{Kind: &structpb.Value_ListValue{ListValue: list}}
}

// EventStruct converts an event into its published form.
func EventStruct(ev *device.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"kind": stringValue(ev.Kind.String()),
	}
	switch ev.Kind {
	case device.EventButtonLongPress:
		fields["elapsedMs"] = numberValue(float64(ev.Elapsed.Milliseconds()))
	case device.EventDateTimeUTC:
		fields["time"] = stringValue(ev.Time.UTC().Format(time.RFC3339))
	case device.EventScheduledFeedingStarted:
		fields["entryIndex"] = numberValue(float64(ev.EntryIndex))
		fields["soundIndex"] = numberValue(float64(ev.SoundIndex))
	case device.EventFeedingComplete:
		fields["revolutions"] = numberValue(float64(ev.Revolutions))
	case device.EventScheduleEntry:
		fields["entry"] = &structpb.Value{Kind: &structpb.Value_StructValue{StructValue: EntryStruct(ev.Entry)}}
	case device.EventUnknownMessage:
		fields["frame"] = stringValue(hex.EncodeToString(ev.Frame))
		if ev.Err != nil {
			fields["error"] = stringValue(ev.Err.Error())
		}
	}
	return &structpb.Struct{Fields: fields}
}

// EncodeEvent serializes an event with protobuf.
func EncodeEvent(ev *device.Event) ([]byte, error) {
	return proto.Marshal(EventStruct(ev))
}

// DecodeStruct parses a protobuf encoded Struct.
func DecodeStruct(payload []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(payload, s); err != nil {
		return nil, err
	}
	return s, nil
}

// FormatStruct renders a Struct as JSON.
func FormatStruct(s *structpb.Struct) string {
	out, err := (&jsonpb.Marshaler{}).MarshalToString(s)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return out
}

// Command names.
const (
	CmdFeed          = "feed"
	CmdScheduleGet   = "schedule.get"
	CmdScheduleSet   = "schedule.set"
	CmdScheduleClear = "schedule.clear"
	CmdBlinkPower    = "blink.power"
	CmdBlinkLink     = "blink.link"
)

// Command is a remote command parsed from a JSON payload.
type Command struct {
	Name string

	Hours      int
	Minutes    int
	Portions   int
	EntryIndex int
	SoundIndex int
	Enabled    bool
	Blink      bool
}

// ParseCommand parses the payload of a command.
// An empty payload is the same as {}.
func ParseCommand(name string, payload []byte) (*Command, error) {
	args := &structpb.Struct{}
	if len(payload) > 0 {
		if err := jsonpb.UnmarshalString(string(payload), args); err != nil {
			return nil, fmt.Errorf("invalid payload: %w", err)
		}
	}
	cmd := &Command{Name: name, Portions: 1, SoundIndex: msgs.SoundNone, Enabled: true}
	var err error
	switch name {
	case CmdFeed:
		err = intArg(args, "portions", true, &cmd.Portions)
	case CmdScheduleSet:
		for _, arg := range []struct {
			name     string
			optional bool
			val      *int
		}{
			{"hours", false, &cmd.Hours},
			{"minutes", false, &cmd.Minutes},
			{"portions", false, &cmd.Portions},
			{"entryIndex", false, &cmd.EntryIndex},
			{"soundIndex", true, &cmd.SoundIndex},
		} {
			if err = intArg(args, arg.name, arg.optional, arg.val); err != nil {
				break
			}
		}
		if err == nil {
			err = boolArg(args, "enabled", &cmd.Enabled)
		}
	case CmdBlinkPower, CmdBlinkLink:
		cmd.Blink = true
		err = boolArg(args, "blink", &cmd.Blink)
	case CmdScheduleGet, CmdScheduleClear:
	default:
		return nil, fmt.Errorf("unknown command %q", name)
	}
	if err != nil {
		return nil, err
	}
	return cmd, nil
}

func intArg(args *structpb.Struct, name string, optional bool, out *int) error {
	v, ok := args.Fields[name]
	if !ok {
		if optional {
			return nil
		}
		return fmt.Errorf("missing %q", name)
	}
	n, ok := v.Kind.(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return fmt.Errorf("%q must be an integer", name)
	}
	*out = int(n.NumberValue)
	return nil
}

func boolArg(args *structpb.Struct, name string, out *bool) error {
	v, ok := args.Fields[name]
	if !ok {
		return nil
	}
	b, ok := v.Kind.(*structpb.Value_BoolValue)
	if !ok {
		return fmt.Errorf("%q must be a boolean", name)
	}
	*out = b.BoolValue
	return nil
}

// ReplyStruct builds the reply of a command.
func ReplyStruct(entries []*msgs.ScheduleEntry, err error) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"ok": boolValue(err == nil),
	}
	if err != nil {
		fields["error"] = stringValue(err.Error())
	}
	if entries != nil {
		fields["schedule"] = scheduleValue(entries)
	}
	return &structpb.Struct{Fields: fields}
}
