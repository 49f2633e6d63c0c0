// Package message defines the wire-agnostic MIDI event record carried between
// port supervisors, the router, and device drivers, plus its raw-byte codec.
package message

import "fmt"

// Type identifies the MIDI status nibble a Message carries.
type Type uint8

const (
	NoteOff         Type = 0x80
	NoteOn          Type = 0x90
	Aftertouch      Type = 0xA0
	ControlChange   Type = 0xB0
	ProgramChange   Type = 0xC0
	ChannelPressure Type = 0xD0
	PitchBend       Type = 0xE0
	SysEx           Type = 0x70
	Unknown         Type = 0xFE
)

func (t Type) String() string {
	switch t {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case Aftertouch:
		return "Aftertouch"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelPressure:
		return "ChannelPressure"
	case PitchBend:
		return "PitchBend"
	case SysEx:
		return "SysEx"
	default:
		return "Unknown"
	}
}

// typeFromByte maps the high nibble of a status byte to a Type, defaulting to
// Unknown for anything this runtime doesn't model (0xF1-0xF6, 0xF8-0xFF).
func typeFromByte(b byte) Type {
	switch b {
	case byte(SysEx), byte(NoteOff), byte(NoteOn), byte(Aftertouch),
		byte(ControlChange), byte(ProgramChange), byte(ChannelPressure), byte(PitchBend):
		return Type(b)
	default:
		return Unknown
	}
}

// Message is the in-memory record of one MIDI event, channel message or SysEx.
type Message struct {
	Device    string
	Timestamp uint64
	Channel   uint8
	Kind      Type
	Key       uint8
	Velocity  uint8
	SysEx     []byte
}

// New builds a zero-value NoteOn message for the given device, matching the
// teacher's pattern of one forwarding constructor per message direction.
func New(device string) Message {
	return Message{Device: device, Kind: NoteOn}
}

// FromRaw decodes a raw backend byte buffer into a Message, stamping it with
// the device name and timestamp the backend supplied. A SysEx frame decodes
// into a SysEx message whose payload excludes the 0xF0/0xF7 framing bytes.
func FromRaw(device string, timestampUs uint64, raw []byte) Message {
	if len(raw) == 0 {
		return Message{Device: device, Timestamp: timestampUs, Kind: Unknown}
	}

	kindByte := raw[0] & 0xF0

	if raw[0] == 0xF0 {
		body := raw[1:]
		if len(body) > 0 && body[len(body)-1] == 0xF7 {
			body = body[:len(body)-1]
		}
		payload := make([]byte, len(body))
		copy(payload, body)
		return Message{
			Device:    device,
			Timestamp: timestampUs,
			Kind:      SysEx,
			SysEx:     payload,
		}
	}

	channel := raw[0] & 0x0F
	var key, velocity byte
	if len(raw) > 1 {
		key = raw[1]
	}
	if len(raw) > 2 {
		velocity = raw[2]
	}

	return Message{
		Device:    device,
		Timestamp: timestampUs,
		Channel:   channel,
		Kind:      typeFromByte(kindByte),
		Key:       key,
		Velocity:  velocity,
	}
}

// ToRaw encodes the Message to the bytes it would be sent as over the wire: a
// 3-byte channel message, or the SysEx payload verbatim (framing is the
// device driver's responsibility, per the data model's SysEx invariant).
func (m Message) ToRaw() []byte {
	if m.Kind == SysEx {
		out := make([]byte, len(m.SysEx))
		copy(out, m.SysEx)
		return out
	}

	return []byte{byte(m.Kind) | (m.Channel & 0x0F), m.Key, m.Velocity}
}

func (m Message) String() string {
	if m.Kind == SysEx {
		return fmt.Sprintf("%s SysEx(%d bytes)@%d", m.Device, len(m.SysEx), m.Timestamp)
	}
	return fmt.Sprintf("%s %s ch=%d key=%d vel=%d@%d", m.Device, m.Kind, m.Channel, m.Key, m.Velocity, m.Timestamp)
}
