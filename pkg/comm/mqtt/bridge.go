package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/petwant.go/pkg/device"
	"github.com/robotalks/petwant.go/pkg/msgs"
)

// Commander executes commands on the feeder, implemented by *device.Device.
type Commander interface {
	FeedManually(ctx context.Context, portions int) error
	GetSchedule(ctx context.Context) ([]*msgs.ScheduleEntry, error)
	SetScheduleEntry(ctx context.Context, hours, minutes, portions, entryIndex, soundIndex int, enabled bool) error
	ClearSchedule(ctx context.Context) error
	SetBlinkingPowerLED(ctx context.Context, blink bool) error
	SetBlinkingLinkLED(ctx context.Context, blink bool) error
}

// Execute runs the command. Only schedule.get returns entries.
func (c *Command) Execute(ctx context.Context, dev Commander) ([]*msgs.ScheduleEntry, error) {
	switch c.Name {
	case CmdFeed:
		return nil, dev.FeedManually(ctx, c.Portions)
	case CmdScheduleGet:
		return dev.GetSchedule(ctx)
	case CmdScheduleSet:
		return nil, dev.SetScheduleEntry(ctx, c.Hours, c.Minutes, c.Portions, c.EntryIndex, c.SoundIndex, c.Enabled)
	case CmdScheduleClear:
		return nil, dev.ClearSchedule(ctx)
	case CmdBlinkPower:
		return nil, dev.SetBlinkingPowerLED(ctx, c.Blink)
	case CmdBlinkLink:
		return nil, dev.SetBlinkingLinkLED(ctx, c.Blink)
	}
	return nil, fmt.Errorf("unknown command %q", c.Name)
}

// DefaultCommandTimeout bounds a remote command.
const DefaultCommandTimeout = 30 * time.Second

// Delays between attempts of the first broker connection, doubled each time.
const (
	DefaultConnectRetry = time.Second
	MaxConnectRetry     = time.Minute
)

// Bridge publishes device events and executes remote commands.
// Topics, relative to the broker URL path:
//
//	<id>/meta            retained, cleared when the bridge goes away
//	<id>/events/<kind>   protobuf encoded google.protobuf.Struct
//	<id>/cmd/<name>      JSON arguments
//	<id>/reply/<name>    protobuf encoded google.protobuf.Struct
type Bridge struct {
	Queue          *Queue
	DeviceID       string
	Device         Commander
	CommandTimeout time.Duration
	// ConnectRetry is the first retry delay of the initial connection.
	ConnectRetry time.Duration

	meta []byte
	ctx  context.Context
}

// NewBridge creates a Bridge. meta is published as JSON on <id>/meta.
func NewBridge(brokerURL, deviceID string, dev Commander, meta map[string]string) (*Bridge, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	metaStruct := &structpb.Struct{Fields: map[string]*structpb.Value{
		"id": stringValue(deviceID),
	}}
	for k, v := range meta {
		metaStruct.Fields[k] = stringValue(v)
	}
	metaJSON, err := (&jsonpb.Marshaler{}).MarshalToString(metaStruct)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+deviceID+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("petwant:" + deviceID)
	}
	b := &Bridge{
		Queue:          NewQueue(opts, prefix),
		DeviceID:       deviceID,
		Device:         dev,
		CommandTimeout: DefaultCommandTimeout,
		meta:           []byte(metaJSON),
		ctx:            context.Background(),
	}
	b.Queue.OnConnect = func(q *Queue) {
		q.PubWith(b.topic("meta"), b.meta, 1, true)
	}
	return b, nil
}

func (b *Bridge) topic(name string) string {
	return b.DeviceID + "/" + name
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt"
}

// Run implements framework.Runnable.
// The broker is optional to the feeder: Run keeps retrying the first
// connection until ctx is done, paho reconnects after that.
func (b *Bridge) Run(ctx context.Context) error {
	b.ctx = ctx
	sub := b.Queue.Sub(b.topic("cmd/+"), b.handleCommand)
	defer sub.Close()
	if err := b.connect(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	b.Queue.PubWith(b.topic("meta"), nil, 1, true).WaitTimeout(time.Second)
	b.Queue.Close()
	return ctx.Err()
}

func (b *Bridge) connect(ctx context.Context) error {
	delay := b.ConnectRetry
	if delay <= 0 {
		delay = DefaultConnectRetry
	}
	for {
		err := b.Queue.Connect()
		if err == nil {
			return nil
		}
		glog.Warningf("MQTT connect: %v, retry in %s", err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > MaxConnectRetry {
			delay = MaxConnectRetry
		}
	}
}

// HandleEvent implements device.EventHandler.
func (b *Bridge) HandleEvent(ctx context.Context, ev *device.Event) {
	payload, err := EncodeEvent(ev)
	if err != nil {
		glog.Errorf("encode event %s: %v", ev, err)
		return
	}
	b.Queue.Pub(b.topic("events/"+ev.Kind.String()), payload)
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	name := topic[strings.LastIndex(topic, "/")+1:]
	glog.Infof("remote command %s %s", name, string(payload))
	// device calls block, keep the MQTT router going.
	go func() {
		reply, err := proto.Marshal(b.execute(b.ctx, name, payload))
		if err != nil {
			glog.Errorf("encode reply of %s: %v", name, err)
			return
		}
		b.Queue.Pub(b.topic("reply/"+name), reply)
	}()
}

func (b *Bridge) execute(ctx context.Context, name string, payload []byte) *structpb.Struct {
	cmd, err := ParseCommand(name, payload)
	if err != nil {
		return ReplyStruct(nil, err)
	}
	if b.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.CommandTimeout)
		defer cancel()
	}
	entries, err := cmd.Execute(ctx, b.Device)
	if err != nil {
		glog.Warningf("remote command %s failed: %v", name, err)
	}
	return ReplyStruct(entries, err)
}
