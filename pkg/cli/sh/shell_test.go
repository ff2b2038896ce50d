package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/petwant.go/pkg/msgs"
)

func TestSetArgs(t *testing.T) {
	type parsed struct {
		hours, minutes, portions, index, sound int
		enabled                                bool
	}
	cases := []struct {
		args   []string
		expect parsed
	}{
		{[]string{"7", "30", "2", "1"}, parsed{7, 30, 2, 1, msgs.SoundNone, true}},
		{[]string{"7", "30", "2", "1", "3"}, parsed{7, 30, 2, 1, 3, true}},
		{[]string{"7", "30", "2", "1", "off"}, parsed{7, 30, 2, 1, msgs.SoundNone, false}},
		{[]string{"18", "0", "1", "4", "0", "on"}, parsed{18, 0, 1, 4, 0, true}},
	}
	for _, c := range cases {
		var p parsed
		var err error
		p.hours, p.minutes, p.portions, p.index, p.sound, p.enabled, err = setArgs(c.args)
		require.NoError(t, err, c.args)
		require.Equal(t, c.expect, p, c.args)
	}

	for _, args := range [][]string{
		nil,
		{"7", "30", "2"},
		{"7", "30", "2", "1", "3", "4"},
		{"7", "30", "2", "1", "3", "maybe"},
		{"seven", "30", "2", "1"},
		{"7", "30", "2", "1", "loud"},
	} {
		_, _, _, _, _, _, err := setArgs(args)
		require.Error(t, err, args)
	}
}

func TestLEDArgs(t *testing.T) {
	_, on, err := ledArgs([]string{"power"})
	require.NoError(t, err)
	require.Nil(t, on)

	_, on, err = ledArgs([]string{"link", "off"})
	require.NoError(t, err)
	require.NotNil(t, on)
	require.False(t, *on)

	for _, args := range [][]string{nil, {"status"}, {"power", "dim"}, {"power", "on", "now"}} {
		_, _, err := ledArgs(args)
		require.Error(t, err, args)
	}
}

func TestFormatEntry(t *testing.T) {
	e, err := msgs.NewScheduleEntry(7, 5, 2, msgs.EntryEnabled, 1, msgs.SoundNone)
	require.NoError(t, err)
	require.Equal(t, "#1 07:05 UTC  2 portions sound none on", FormatEntry(e))

	e, err = msgs.NewScheduleEntry(19, 30, 10, msgs.EntryDisabled, 4, 3)
	require.NoError(t, err)
	require.Equal(t, "#4 19:30 UTC 10 portions sound 3    off", FormatEntry(e))
}
