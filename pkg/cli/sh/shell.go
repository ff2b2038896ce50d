// Package sh provides the interactive shell of a feeder.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/petwant.go/pkg/comm/mqtt"
	"github.com/robotalks/petwant.go/pkg/msgs"
)

// Device is the feeder driven by the shell, implemented by *device.Device.
type Device interface {
	mqtt.Commander
	PowerLED(ctx context.Context) (bool, error)
	SetPowerLED(ctx context.Context, on bool) error
	LinkLED(ctx context.Context) (bool, error)
	SetLinkLED(ctx context.Context, on bool) error
	BlinkingPowerLED(ctx context.Context) (bool, error)
	BlinkingLinkLED(ctx context.Context) (bool, error)
	ButtonPressed(ctx context.Context) (bool, error)
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// CommandTimeout bounds each command.
	CommandTimeout time.Duration

	Shell  *ishell.Shell
	Device Device
}

const shellKey = "$shell"

var (
	evalOnly       bool
	outputJSON     bool
	commandTimeout = 10 * time.Second

	commands = []*ishell.Cmd{
		&ScheduleCmd,
		&SetCmd,
		&ClearCmd,
		&FeedCmd,
		&LEDCmd,
		&BlinkCmd,
		&ButtonCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&commandTimeout, "timeout", commandTimeout, "Command timeout.")
}

// New creates a new shell.
func New(dev Device) *Shell {
	s := &Shell{
		Interactive:    !evalOnly,
		OutputJSON:     outputJSON,
		CommandTimeout: commandTimeout,
		Shell:          ishell.New(),
		Device:         dev,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("petwant > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Run processes args as a single command, or runs interactively.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

// Do runs fn with the command timeout and reports the error.
func Do(c *ishell.Context, fn func(ctx context.Context, dev Device) error) {
	s := ShellFrom(c)
	ctx := context.Background()
	if s.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.CommandTimeout)
		defer cancel()
	}
	if err := fn(ctx, s.Device); err != nil {
		c.Err(err)
	}
}

// DoAction runs fn and prints OK on success.
func DoAction(c *ishell.Context, fn func(ctx context.Context, dev Device) error) {
	Do(c, func(ctx context.Context, dev Device) error {
		if err := fn(ctx, dev); err != nil {
			return err
		}
		c.Println("OK")
		return nil
	})
}

// FormatEntry renders a schedule entry in one line.
func FormatEntry(e *msgs.ScheduleEntry) string {
	state := "off"
	if e.Enabled() {
		state = "on"
	}
	sound := "none"
	if e.SoundIndex() != msgs.SoundNone {
		sound = strconv.Itoa(e.SoundIndex())
	}
	return fmt.Sprintf("#%d %02d:%02d UTC %2d portions sound %-4s %s",
		e.EntryIndex(), e.Hours(), e.Minutes(), e.Portions(), sound, state)
}

func parseInt(name, arg string) (int, error) {
	val, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return val, nil
}

func parseOnOff(arg string) (bool, error) {
	switch arg {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off, not %q", arg)
}

const setUsage = "usage: set HOURS MINUTES PORTIONS INDEX [SOUND] [on|off]"

// setArgs parses the arguments of SetCmd.
func setArgs(args []string) (hours, minutes, portions, index, sound int, enabled bool, err error) {
	sound, enabled = msgs.SoundNone, true
	if n := len(args); n > 4 {
		if on, e := parseOnOff(args[n-1]); e == nil {
			enabled, args = on, args[:n-1]
		}
	}
	if len(args) < 4 || len(args) > 5 {
		err = errors.New(setUsage)
		return
	}
	ints := []*int{&hours, &minutes, &portions, &index, &sound}
	names := []string{"hours", "minutes", "portions", "index", "sound"}
	for n, arg := range args {
		if *ints[n], err = parseInt(names[n], arg); err != nil {
			return
		}
	}
	return
}

type ledOps struct {
	get      func(Device, context.Context) (bool, error)
	set      func(Device, context.Context, bool) error
	blinking func(Device, context.Context) (bool, error)
	blink    func(Device, context.Context, bool) error
}

var leds = map[string]ledOps{
	"power": {
		get:      Device.PowerLED,
		set:      Device.SetPowerLED,
		blinking: Device.BlinkingPowerLED,
		blink:    Device.SetBlinkingPowerLED,
	},
	"link": {
		get:      Device.LinkLED,
		set:      Device.SetLinkLED,
		blinking: Device.BlinkingLinkLED,
		blink:    Device.SetBlinkingLinkLED,
	},
}

func ledArgs(args []string) (ledOps, *bool, error) {
	if len(args) < 1 || len(args) > 2 {
		return ledOps{}, nil, fmt.Errorf("usage: power|link [on|off]")
	}
	ops, ok := leds[args[0]]
	if !ok {
		return ops, nil, fmt.Errorf("unknown LED %q", args[0])
	}
	if len(args) == 1 {
		return ops, nil, nil
	}
	on, err := parseOnOff(args[1])
	if err != nil {
		return ops, nil, err
	}
	return ops, &on, nil
}

func printOnOff(c *ishell.Context, on bool) {
	if on {
		c.Println("on")
	} else {
		c.Println("off")
	}
}

var (
	// ScheduleCmd prints the schedule.
	ScheduleCmd = ishell.Cmd{
		Name:    "schedule",
		Aliases: []string{"ls", "s"},
		Help:    "",
		Func: func(c *ishell.Context) {
			Do(c, func(ctx context.Context, dev Device) error {
				entries, err := dev.GetSchedule(ctx)
				if err != nil {
					return err
				}
				if ShellFrom(c).OutputJSON {
					c.Println(mqtt.FormatStruct(mqtt.ReplyStruct(entries, nil)))
					return nil
				}
				for _, e := range entries {
					c.Println(FormatEntry(e))
				}
				return nil
			})
		},
	}

	// SetCmd updates a schedule entry.
	SetCmd = ishell.Cmd{
		Name: "set",
		Help: "HOURS MINUTES PORTIONS INDEX [SOUND] [on|off]",
		Func: func(c *ishell.Context) {
			hours, minutes, portions, index, sound, enabled, err := setArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoAction(c, func(ctx context.Context, dev Device) error {
				return dev.SetScheduleEntry(ctx, hours, minutes, portions, index, sound, enabled)
			})
		},
	}

	// ClearCmd disables all schedule entries.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "",
		Func: func(c *ishell.Context) {
			DoAction(c, func(ctx context.Context, dev Device) error {
				return dev.ClearSchedule(ctx)
			})
		},
	}

	// FeedCmd feeds immediately.
	FeedCmd = ishell.Cmd{
		Name:    "feed",
		Aliases: []string{"f"},
		Help:    "[PORTIONS]",
		Func: func(c *ishell.Context) {
			portions := 1
			if len(c.Args) > 0 {
				var err error
				if portions, err = parseInt("portions", c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			DoAction(c, func(ctx context.Context, dev Device) error {
				return dev.FeedManually(ctx, portions)
			})
		},
	}

	// LEDCmd reads or sets an LED.
	LEDCmd = ishell.Cmd{
		Name: "led",
		Help: "power|link [on|off]",
		Func: func(c *ishell.Context) {
			ops, on, err := ledArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if on != nil {
				DoAction(c, func(ctx context.Context, dev Device) error {
					return ops.set(dev, ctx, *on)
				})
				return
			}
			Do(c, func(ctx context.Context, dev Device) error {
				lit, err := ops.get(dev, ctx)
				if err == nil {
					printOnOff(c, lit)
				}
				return err
			})
		},
	}

	// BlinkCmd reads or sets LED blinking.
	BlinkCmd = ishell.Cmd{
		Name: "blink",
		Help: "power|link [on|off]",
		Func: func(c *ishell.Context) {
			ops, on, err := ledArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if on != nil {
				DoAction(c, func(ctx context.Context, dev Device) error {
					return ops.blink(dev, ctx, *on)
				})
				return
			}
			Do(c, func(ctx context.Context, dev Device) error {
				blinking, err := ops.blinking(dev, ctx)
				if err == nil {
					printOnOff(c, blinking)
				}
				return err
			})
		},
	}

	// ButtonCmd reads the button.
	ButtonCmd = ishell.Cmd{
		Name: "button",
		Help: "",
		Func: func(c *ishell.Context) {
			Do(c, func(ctx context.Context, dev Device) error {
				pressed, err := dev.ButtonPressed(ctx)
				if err != nil {
					return err
				}
				if pressed {
					c.Println("pressed")
				} else {
					c.Println("released")
				}
				return nil
			})
		},
	}
)
