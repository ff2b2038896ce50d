package msgs

import (
	"fmt"

	"github.com/robotalks/petwant.go/pkg/wire"
)

// EntryState is the state of a schedule entry.
type EntryState byte

// Entry states.
const (
	// EntryNow executes a feeding immediately, used with entry index 0.
	EntryNow      EntryState = 0x01
	EntryDisabled EntryState = 0x10
	EntryEnabled  EntryState = 0x11
)

// IsValid checks the state is one the feeder understands.
func (s EntryState) IsValid() bool {
	return s == EntryNow || s == EntryDisabled || s == EntryEnabled
}

// String implements fmt.Stringer.
func (s EntryState) String() string {
	switch s {
	case EntryNow:
		return "now"
	case EntryDisabled:
		return "disabled"
	case EntryEnabled:
		return "enabled"
	}
	return fmt.Sprintf("state(%d)", byte(s))
}

// Schedule limits.
const (
	// ScheduleEntries is the number of entries stored on the feeder.
	ScheduleEntries = 4
	// EntryIndexNow is the entry index for immediate feeding.
	EntryIndexNow = 0
	MaxEntryIndex = ScheduleEntries
	MaxPortions   = 10
	// SoundNone disables the sound, 0-9 select a recording.
	SoundNone = 10
	// GramsPerPortion converts portions to the wire unit.
	GramsPerPortion = 10
)

// ScheduleEntry is a feeding time record, or a manual feeding command when
// its state is EntryNow.
type ScheduleEntry struct {
	hours      int
	minutes    int
	portions   int
	state      EntryState
	entryIndex int
	soundIndex int
}

// NewScheduleEntry creates a validated ScheduleEntry.
func NewScheduleEntry(hours, minutes, portions int, state EntryState, entryIndex, soundIndex int) (*ScheduleEntry, error) {
	e := &ScheduleEntry{}
	for _, err := range []error{
		e.SetHours(hours),
		e.SetMinutes(minutes),
		e.SetPortions(portions),
		e.SetState(state),
		e.SetEntryIndex(entryIndex),
		e.SetSoundIndex(soundIndex),
	} {
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Kind implements Message.
func (e *ScheduleEntry) Kind() Kind { return KindScheduleEntry }

// Hours returns the hour of day (UTC).
func (e *ScheduleEntry) Hours() int { return e.hours }

// Minutes returns the minute.
func (e *ScheduleEntry) Minutes() int { return e.minutes }

// Portions returns number of portions.
func (e *ScheduleEntry) Portions() int { return e.portions }

// State returns the entry state.
func (e *ScheduleEntry) State() EntryState { return e.state }

// EntryIndex returns the entry index.
func (e *ScheduleEntry) EntryIndex() int { return e.entryIndex }

// SoundIndex returns the sound index.
func (e *ScheduleEntry) SoundIndex() int { return e.soundIndex }

// Enabled tells if the entry is an enabled schedule.
func (e *ScheduleEntry) Enabled() bool { return e.state == EntryEnabled }

// SetHours sets the hours.
func (e *ScheduleEntry) SetHours(val int) error {
	if err := checkRange("hours", val, 0, 23); err != nil {
		return err
	}
	e.hours = val
	return nil
}

// SetMinutes sets the minutes.
func (e *ScheduleEntry) SetMinutes(val int) error {
	if err := checkRange("minutes", val, 0, 59); err != nil {
		return err
	}
	e.minutes = val
	return nil
}

// SetPortions sets the portions.
func (e *ScheduleEntry) SetPortions(val int) error {
	if err := checkRange("portions", val, 0, MaxPortions); err != nil {
		return err
	}
	e.portions = val
	return nil
}

// SetState sets the entry state.
func (e *ScheduleEntry) SetState(val EntryState) error {
	if !val.IsValid() {
		return &ParamError{Param: "entryState", Value: int(val), Expect: "16, 17 or 1"}
	}
	e.state = val
	return nil
}

// SetEntryIndex sets the entry index.
func (e *ScheduleEntry) SetEntryIndex(val int) error {
	if err := checkRange("entryIndex", val, 0, MaxEntryIndex); err != nil {
		return err
	}
	e.entryIndex = val
	return nil
}

// SetSoundIndex sets the sound index.
func (e *ScheduleEntry) SetSoundIndex(val int) error {
	if err := checkRange("soundIndex", val, 0, SoundNone); err != nil {
		return err
	}
	e.soundIndex = val
	return nil
}

// Encode implements Encoder.
// Payload: 00 00 00 HH MM GRAMS 00 STATE ENTRY SOUND
func (e *ScheduleEntry) Encode() wire.Frame {
	return wire.NewFrame(TypeCommand,
		0, 0, 0,
		byte(e.hours),
		byte(e.minutes),
		byte(e.portions*GramsPerPortion),
		0,
		byte(e.state),
		byte(e.entryIndex),
		byte(e.soundIndex))
}

// String implements Message.
func (e *ScheduleEntry) String() string {
	return fmt.Sprintf("EntryIndex:%d Hours:%d Minutes:%d Portions:%d EntryState:%s SoundIndex:%d",
		e.entryIndex, e.hours, e.minutes, e.portions, e.state, e.soundIndex)
}

func decodeScheduleEntry(data []byte) (*ScheduleEntry, error) {
	grams := int(data[5])
	if grams%GramsPerPortion != 0 {
		return nil, &ParamError{Param: "portions", Value: grams, Expect: "a multiple of 10 grams"}
	}
	return NewScheduleEntry(
		int(data[3]),
		int(data[4]),
		grams/GramsPerPortion,
		EntryState(data[7]),
		int(data[8]),
		int(data[9]))
}
