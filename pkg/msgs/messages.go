package msgs

import (
	"fmt"

	"github.com/robotalks/petwant.go/pkg/wire"
)

// Ping is sent periodically by the feeder and expects a PingResponse.
type Ping struct{}

// Kind implements Message.
func (m *Ping) Kind() Kind { return KindPing }

// String implements Message.
func (m *Ping) String() string { return "Ping" }

// PingResponse answers Ping.
type PingResponse struct{}

// Kind implements Message.
func (m *PingResponse) Kind() Kind { return KindPingResponse }

// String implements Message.
func (m *PingResponse) String() string { return "Ping response" }

// Encode implements Encoder.
func (m *PingResponse) Encode() wire.Frame { return wire.NewFrame(TypePingResponse, 0x00) }

// DateTimeSet confirms the feeder accepted a clock fix.
type DateTimeSet struct{}

// Kind implements Message.
func (m *DateTimeSet) Kind() Kind { return KindDateTimeSet }

// String implements Message.
func (m *DateTimeSet) String() string { return "DateTime was successfully set" }

// ScheduleRequest asks the feeder for its schedule entries.
type ScheduleRequest struct{}

// Kind implements Message.
func (m *ScheduleRequest) Kind() Kind { return KindScheduleRequest }

// String implements Message.
func (m *ScheduleRequest) String() string { return "Schedule request" }

// Encode implements Encoder.
func (m *ScheduleRequest) Encode() wire.Frame { return wire.NewFrame(TypeSchedule, dataRequest) }

// Ok acknowledges a command.
type Ok struct{}

// Kind implements Message.
func (m *Ok) Kind() Kind { return KindOk }

// String implements Message.
func (m *Ok) String() string { return "Command was accepted" }

// WarningNoFood reports an empty food container.
type WarningNoFood struct{}

// Kind implements Message.
func (m *WarningNoFood) Kind() Kind { return KindWarningNoFood }

// String implements Message.
func (m *WarningNoFood) String() string { return "Warning! No food!" }

// MaxRevolutions is the largest motor revolution count reported.
const MaxRevolutions = 10

// MotorStatus reports the motor revolutions done when feeding completes.
type MotorStatus struct {
	revolutions int
}

// NewMotorStatus creates a MotorStatus.
func NewMotorStatus(revolutionsDone int) (*MotorStatus, error) {
	if err := checkRange("revolutionsDone", revolutionsDone, 0, MaxRevolutions); err != nil {
		return nil, err
	}
	return &MotorStatus{revolutions: revolutionsDone}, nil
}

// Kind implements Message.
func (m *MotorStatus) Kind() Kind { return KindMotorStatus }

// RevolutionsDone returns the revolution count.
func (m *MotorStatus) RevolutionsDone() int { return m.revolutions }

// String implements Message.
func (m *MotorStatus) String() string {
	return fmt.Sprintf("Motor revolutions done: %d", m.revolutions)
}

// ScheduledFeedingStarted reports a feeding started by a schedule entry
// (entry index 1-4) or manually (entry index 0).
type ScheduledFeedingStarted struct {
	entryIndex int
	soundIndex int
}

// NewScheduledFeedingStarted creates a ScheduledFeedingStarted.
func NewScheduledFeedingStarted(entryIndex, soundIndex int) (*ScheduledFeedingStarted, error) {
	if err := checkRange("entryIndex", entryIndex, 0, MaxEntryIndex); err != nil {
		return nil, err
	}
	if err := checkRange("soundIndex", soundIndex, 0, SoundNone); err != nil {
		return nil, err
	}
	return &ScheduledFeedingStarted{entryIndex: entryIndex, soundIndex: soundIndex}, nil
}

// Kind implements Message.
func (m *ScheduledFeedingStarted) Kind() Kind { return KindScheduledFeedingStarted }

// EntryIndex returns the schedule entry index.
func (m *ScheduledFeedingStarted) EntryIndex() int { return m.entryIndex }

// SoundIndex returns the sound played.
func (m *ScheduledFeedingStarted) SoundIndex() int { return m.soundIndex }

// String implements Message.
func (m *ScheduledFeedingStarted) String() string {
	return fmt.Sprintf("Scheduled feeding started for schedule entry index: %d with sound index: %d",
		m.entryIndex, m.soundIndex)
}
