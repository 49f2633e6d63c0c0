// Package launchpadx implements the RGB-generation Launchpad device driver:
// 9x9 LED addressing (the 8x8 pad plus top row and right column of function
// buttons), the large-colour/palette colour model, and the SysEx vocabulary
// for screen selection, fader init, scrolling text, sleep, and DAW-state
// control.
package launchpadx

import (
	"bytes"
	"sync/atomic"

	"github.com/oda-midichan/midichan/internal/message"
)

// ByteHeader is the fixed 6-byte manufacturer prefix every SysEx frame this
// device understands starts with.
var ByteHeader = [6]byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0C}

// PulseMode selects whether an LED write is static, flashing, or pulsing.
type PulseMode byte

const (
	Static PulseMode = 0x00
	Flash  PulseMode = 0x01
	Pulse  PulseMode = 0x02
)

// Color is a palette index plus a pulse mode, the RGB device's compact LED
// colour encoding (carried in the MIDI channel nibble).
type Color struct {
	Index byte
	Mode  PulseMode
}

// LargeColor is a full 7-bit-per-channel RGB colour, sent only via SysEx.
type LargeColor struct {
	R, G, B byte
}

// Screen selects which built-in screen the device shows.
type Screen byte

const (
	Session    Screen = 0x00
	Notes      Screen = 0x01
	Custom1    Screen = 0x04
	Custom2    Screen = 0x05
	Custom3    Screen = 0x06
	Custom4    Screen = 0x07
	Faders     Screen = 0x0D
	Programmer Screen = 0x7F
)

// SysEx command bytes, per the device's vocabulary.
const (
	cmdSelectScreen  = 0x00
	cmdInitFaders    = 0x01
	cmdSetLED        = 0x03
	cmdScrollText    = 0x07
	cmdSleep         = 0x09
	cmdProgrammer    = 0x0E
	cmdDrumRackMode  = 0x0F
	cmdDAWMode       = 0x10
	cmdClearDAWState = 0x12
)

func ledIndex(x, y byte) byte { return (y+1)*10 + (x + 1) }

func ledKind(x, y byte) message.Type {
	if x == 8 || y == 8 {
		return message.ControlChange
	}
	return message.NoteOn
}

// FaderSpec describes one fader slot for InitFaders.
type FaderSpec struct {
	Bipolar bool
	CC      byte
	Color   Color
}

// Driver is a cloneable handle onto the RGB device's four channel
// endpoints (main in/out, DAW in/out) and its mutable mode state. Clones
// share the same channels; the device is only reset to its resting state
// when the last clone is closed.
type Driver struct {
	dawName  string
	midiName string

	input     <-chan message.Message
	output    chan<- message.Message
	dawInput  <-chan message.Message
	dawOutput chan<- message.Message

	programmerMode bool
	screen         Screen

	refs   *int32
	closed bool
}

// New opens the device: it enables DAW mode and drops out of programmer
// mode to the Session screen, matching the constructor sequence the
// original device driver runs before handing control to an app.
func New(input <-chan message.Message, output chan<- message.Message, dawInput <-chan message.Message, dawOutput chan<- message.Message) *Driver {
	refs := int32(1)
	d := &Driver{
		dawName:        "Launchpad DAW",
		midiName:       "Launchpad MIDI",
		input:          input,
		output:         output,
		dawInput:       dawInput,
		dawOutput:      dawOutput,
		programmerMode: true,
		screen:         Session,
		refs:           &refs,
	}

	d.sendSysex(cmdDAWMode, []byte{0x01})
	d.SetProgrammerMode(false)

	return d
}

// WithNames renames the logical devices the driver addresses messages to.
func (d *Driver) WithNames(dawName, midiName string) *Driver {
	d.dawName = dawName
	d.midiName = midiName
	return d
}

// Clone returns a new handle sharing the same channels and reference count.
// Its mode state starts as a copy of the current mode but is tracked
// independently from then on, matching a plain value clone.
func (d *Driver) Clone() *Driver {
	atomic.AddInt32(d.refs, 1)
	clone := *d
	return &clone
}

// Close releases this handle. When it is the last live clone, the device is
// returned to its resting state: programmer mode off, Custom3 screen, DAW
// state cleared, DAW mode off. Each step is best-effort.
func (d *Driver) Close() {
	if d.closed {
		return
	}
	d.closed = true

	if atomic.AddInt32(d.refs, -1) != 0 {
		return
	}

	d.SetProgrammerMode(false)
	d.SetScreen(Custom3)
	d.ClearDAWState(true, true, true)
	d.sendSysex(cmdDAWMode, []byte{0x00})
}

// Input returns the main port's inbound message channel.
func (d *Driver) Input() <-chan message.Message { return d.input }

// DAWInput returns the DAW port's inbound message channel.
func (d *Driver) DAWInput() <-chan message.Message { return d.dawInput }

func (d *Driver) sendSysex(cmd byte, payload []byte) {
	d.output <- message.Message{
		Device: d.midiName,
		Kind:   message.SysEx,
		SysEx:  frameSysEx(cmd, payload),
	}
}

func (d *Driver) sendDawSysex(cmd byte, payload []byte) {
	d.dawOutput <- message.Message{
		Device: d.dawName,
		Kind:   message.SysEx,
		SysEx:  frameSysEx(cmd, payload),
	}
}

func frameSysEx(cmd byte, payload []byte) []byte {
	out := make([]byte, 0, len(ByteHeader)+2+len(payload))
	out = append(out, ByteHeader[:]...)
	out = append(out, cmd)
	out = append(out, payload...)
	out = append(out, 0xF7)
	return out
}

// DecodeSysEx extracts (command, payload) from an inbound SysEx Message that
// has already had its 0xF0/0xF7 framing stripped by message.FromRaw, so the
// leading byte of m.SysEx is the manufacturer header's first byte, not 0xF0.
// It rejects anything not carrying this device's manufacturer header.
func DecodeSysEx(m message.Message) (cmd byte, payload []byte, ok bool) {
	header := ByteHeader[1:]
	if m.Kind != message.SysEx || len(m.SysEx) < len(header)+1 {
		return 0, nil, false
	}
	if !bytes.Equal(m.SysEx[:len(header)], header) {
		return 0, nil, false
	}
	return m.SysEx[len(header)], m.SysEx[len(header)+1:], true
}

// IsProgrammerMode reports the driver's current tracked mode.
func (d *Driver) IsProgrammerMode() bool { return d.programmerMode }

// SetProgrammerMode is a no-op if the flag already matches; otherwise it
// emits command 0x0E and updates the flag.
func (d *Driver) SetProgrammerMode(on bool) {
	if d.programmerMode == on {
		return
	}
	d.sendSysex(cmdProgrammer, []byte{boolByte(on)})
	d.programmerMode = on
}

// Clear sends the sentinel CC(key=0, velocity=0) message the device
// interprets as "all LEDs off".
func (d *Driver) Clear() {
	d.output <- message.Message{Device: d.midiName, Kind: message.ControlChange}
}

// Set writes one LED at (x, y) in the 9x9 grid: the top row (y==8) and
// right column (x==8) are ControlChange, the interior is NoteOn.
func (d *Driver) Set(x, y byte, color Color) {
	d.output <- message.Message{
		Device:   d.midiName,
		Channel:  byte(color.Mode),
		Kind:     ledKind(x, y),
		Key:      ledIndex(x, y),
		Velocity: color.Index,
	}
}

// SetLarge writes a full 21-bit RGB colour to one LED. Programmer mode only.
func (d *Driver) SetLarge(x, y byte, color LargeColor) {
	d.sendSysex(cmdSetLED, []byte{ledIndex(x, y), color.R, color.G, color.B})
}

// SetScreen is a no-op while in programmer mode; otherwise it emits command
// 0x00 and tracks programmer mode iff the chosen screen is Programmer.
func (d *Driver) SetScreen(screen Screen) {
	if d.programmerMode {
		return
	}
	d.sendSysex(cmdSelectScreen, []byte{byte(screen)})
	d.programmerMode = screen == Programmer
	d.screen = screen
}

// SetSession writes one LED on the DAW port's Session screen grid.
func (d *Driver) SetSession(x, y byte, color Color) {
	d.dawOutput <- message.Message{
		Device:   d.dawName,
		Channel:  byte(color.Mode),
		Kind:     ledKind(x, y),
		Key:      ledIndex(x, y),
		Velocity: color.Index,
	}
}

// InitFaders configures up to 8 faders. Nil entries are omitted from the
// payload; entries carry no slot index, so each non-nil entry takes the next
// fader slot in order.
func (d *Driver) InitFaders(horizontal bool, faders [8]*FaderSpec) {
	payload := make([]byte, 0, 2+8*3)
	payload = append(payload, 0x00, boolByte(horizontal))
	for _, f := range faders {
		if f == nil {
			continue
		}
		payload = append(payload, boolByte(f.Bipolar), f.CC, f.Color.Index)
	}
	d.sendDawSysex(cmdInitFaders, payload)
}

// SetFaderPos moves a fader to pos without changing its colour.
func (d *Driver) SetFaderPos(fader, pos byte) {
	d.dawOutput <- message.Message{Device: d.dawName, Channel: 4, Kind: message.ControlChange, Key: fader, Velocity: pos}
}

// SetFaderColor recolours a fader without changing its position.
func (d *Driver) SetFaderColor(fader byte, color Color) {
	d.dawOutput <- message.Message{Device: d.dawName, Channel: 5, Kind: message.ControlChange, Key: fader, Velocity: color.Index}
}

// SetDrumRackMode selects drum-rack mode: 0 off, 1 simple, 2 intelligent.
func (d *Driver) SetDrumRackMode(mode byte) {
	d.sendDawSysex(cmdDrumRackMode, []byte{mode})
}

// SetDrumRack writes one drum-rack pad; the pulse mode's channel offset is
// shifted by 8 versus the main grid.
func (d *Driver) SetDrumRack(x, y byte, color Color) {
	d.dawOutput <- message.Message{
		Device:   d.dawName,
		Channel:  8 + byte(color.Mode),
		Kind:     ledKind(x, y),
		Key:      ledIndex(x, y),
		Velocity: color.Index,
	}
}

// ClearDAWState clears the requested DAW-port sub-states.
func (d *Driver) ClearDAWState(session, drumRack, cc bool) {
	d.sendDawSysex(cmdClearDAWState, []byte{boolByte(session), boolByte(drumRack), boolByte(cc)})
}

// ScrollText scrolls text across the device using a palette colour.
func (d *Driver) ScrollText(text string, color Color, speed byte, loop bool) {
	payload := append([]byte{boolByte(loop), speed, 0, color.Index}, stripEndSysEx(text)...)
	d.sendDawSysex(cmdScrollText, payload)
}

// ScrollTextLarge scrolls text across the device using a full RGB colour.
func (d *Driver) ScrollTextLarge(text string, color LargeColor, speed byte, loop bool) {
	payload := append([]byte{boolByte(loop), speed, 1, color.R, color.G, color.B}, stripEndSysEx(text)...)
	d.sendDawSysex(cmdScrollText, payload)
}

// StopScrollText halts any in-progress scroll.
func (d *Driver) StopScrollText() {
	d.sendDawSysex(cmdScrollText, nil)
}

// SetSleep toggles the device's low-power sleep state.
func (d *Driver) SetSleep(shouldSleep bool) {
	d.sendDawSysex(cmdSleep, []byte{boolByte(shouldSleep)})
}

func stripEndSysEx(text string) []byte {
	raw := []byte(text)
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b != 0xF7 {
			out = append(out, b)
		}
	}
	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
