package launchpadx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oda-midichan/midichan/internal/message"
)

func newTestDriver(t *testing.T) (*Driver, chan message.Message, chan message.Message) {
	t.Helper()
	in := make(chan message.Message, 8)
	out := make(chan message.Message, 8)
	dawIn := make(chan message.Message, 8)
	dawOut := make(chan message.Message, 8)

	d := New(in, out, dawIn, dawOut)
	// constructor emits DAW-mode-on then programmer-mode-off; drain them.
	<-out
	<-out

	return d, out, dawOut
}

func TestSetInteriorProducesNoteOn(t *testing.T) {
	d, out, _ := newTestDriver(t)

	d.Set(3, 5, Color{Index: 7, Mode: Pulse})

	got := <-out
	require.Equal(t, message.NoteOn, got.Kind)
	require.Equal(t, uint8(2), got.Channel)
	require.Equal(t, uint8(64), got.Key)
	require.Equal(t, uint8(7), got.Velocity)
}

func TestSetRightColumnProducesControlChange(t *testing.T) {
	d, out, _ := newTestDriver(t)

	d.Set(8, 0, Color{Index: 5})

	got := <-out
	require.Equal(t, message.ControlChange, got.Kind)
}

func TestSetTopRowProducesControlChange(t *testing.T) {
	d, out, _ := newTestDriver(t)

	d.Set(0, 8, Color{Index: 5})

	got := <-out
	require.Equal(t, message.ControlChange, got.Kind)
}

func TestProgrammerModeGuardsScreenSelect(t *testing.T) {
	d, out, _ := newTestDriver(t)

	d.SetProgrammerMode(true)
	got := <-out
	require.Equal(t, message.SysEx, got.Kind)

	before := d.IsProgrammerMode()
	d.SetScreen(Session)
	require.Equal(t, before, d.IsProgrammerMode())
	require.Len(t, out, 0)
}

func TestSetProgrammerModeIsNoopWhenUnchanged(t *testing.T) {
	d, out, _ := newTestDriver(t)

	require.False(t, d.IsProgrammerMode())
	d.SetProgrammerMode(false)
	require.Len(t, out, 0)
}

func TestSysExFramingRoundTrips(t *testing.T) {
	d, out, _ := newTestDriver(t)

	d.SetProgrammerMode(true)
	sent := <-out

	require.Equal(t, message.SysEx, sent.Kind)
	cmd, payload, ok := DecodeSysEx(message.FromRaw("Launchpad MIDI", 0, sent.ToRaw()))
	require.True(t, ok)
	require.Equal(t, byte(cmdProgrammer), cmd)
	require.Equal(t, []byte{1}, payload)
}

func TestDecodeSysExRejectsWrongHeader(t *testing.T) {
	m := message.Message{Kind: message.SysEx, SysEx: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0E, 0x01}}
	_, _, ok := DecodeSysEx(m)
	require.False(t, ok)
}

func TestCloseOnlyResetsOnLastClone(t *testing.T) {
	d, out, dawOut := newTestDriver(t)
	clone := d.Clone()

	d.Close()
	require.Len(t, out, 0)
	require.Len(t, dawOut, 0)

	clone.Close()
	require.Greater(t, len(out)+len(dawOut), 0)
}

func TestScrollTextStripsF7Bytes(t *testing.T) {
	d, _, dawOut := newTestDriver(t)

	d.ScrollText("hi\xF7!", Color{Index: 3}, 10, true)

	got := <-dawOut
	cmd, payload, ok := DecodeSysEx(message.FromRaw("Launchpad DAW", 0, got.ToRaw()))
	require.True(t, ok)
	require.Equal(t, byte(cmdScrollText), cmd)
	require.Equal(t, []byte{1, 10, 0, 3, 'h', 'i', '!'}, payload)
}
