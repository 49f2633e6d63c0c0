package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelMessageRoundTrip(t *testing.T) {
	kinds := []Type{NoteOff, NoteOn, Aftertouch, ControlChange, ProgramChange, ChannelPressure, PitchBend}

	for _, kind := range kinds {
		for channel := uint8(0); channel < 16; channel++ {
			for _, key := range []uint8{0, 1, 64, 127} {
				for _, velocity := range []uint8{0, 1, 64, 127} {
					m := Message{
						Device:   "Launchpad",
						Channel:  channel,
						Kind:     kind,
						Key:      key,
						Velocity: velocity,
					}

					raw := m.ToRaw()
					require.Len(t, raw, 3)

					got := FromRaw("Launchpad", 0, raw)
					require.Equal(t, m, got)
				}
			}
		}
	}
}

func TestSysExDecodeStripsFraming(t *testing.T) {
	header := []byte{0x00, 0x20, 0x29, 0x02, 0x0C}
	cmd := byte(0x0E)
	body := []byte{0x01, 0x02, 0x03}

	raw := append([]byte{0xF0}, header...)
	raw = append(raw, cmd)
	raw = append(raw, body...)
	raw = append(raw, 0xF7)

	got := FromRaw("Launchpad MIDI", 42, raw)

	require.Equal(t, SysEx, got.Kind)
	require.Equal(t, uint64(42), got.Timestamp)
	require.Equal(t, uint8(0), got.Channel)
	require.Equal(t, uint8(0), got.Key)
	require.Equal(t, uint8(0), got.Velocity)

	want := append(append([]byte{}, header...), cmd)
	want = append(want, body...)
	require.Equal(t, want, got.SysEx)
}

func TestSysExEncodeIsVerbatim(t *testing.T) {
	payload := []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0C, 0x0E, 0x01, 0xF7}
	m := Message{Device: "Launchpad MIDI", Kind: SysEx, SysEx: payload}

	require.Equal(t, payload, m.ToRaw())
}

func TestUnknownStatusByte(t *testing.T) {
	got := FromRaw("Launchpad", 0, []byte{0xF1, 0x00})
	require.Equal(t, Unknown, got.Kind)
}

func TestEmptyRawIsUnknown(t *testing.T) {
	got := FromRaw("Launchpad", 0, nil)
	require.Equal(t, Unknown, got.Kind)
}
