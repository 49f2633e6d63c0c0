package port

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// rtmidiBackend adapts gitlab.com/gomidi/midi/v2's driver registry to the
// Backend seam, the same package odaacabeef-midi-cable uses to enumerate and
// open ports.
type rtmidiBackend struct{}

// NewRtmidiBackend returns the production Backend, backed by whichever
// driver rtmididrv registered (CoreMIDI, ALSA, or WinMM depending on OS).
func NewRtmidiBackend() Backend {
	return rtmidiBackend{}
}

func (rtmidiBackend) Ins() ([]string, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("enumerate midi inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func (rtmidiBackend) Outs() ([]string, error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, fmt.Errorf("enumerate midi outputs: %w", err)
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

func (rtmidiBackend) OpenIn(portID int, onMessage func(uint64, []byte)) (InHandle, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("enumerate midi inputs: %w", err)
	}
	if portID < 0 || portID >= len(ins) {
		return nil, fmt.Errorf("midi input port %d out of range", portID)
	}

	in := ins[portID]
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open midi input %q: %w", in.String(), err)
	}

	stopFn, err := in.Listen(func(msg []byte, timestampms int32) {
		onMessage(uint64(timestampms)*1000, msg)
	}, drivers.ListenConfig{})
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("listen on midi input %q: %w", in.String(), err)
	}

	return &rtmidiIn{in: in, stop: stopFn}, nil
}

func (rtmidiBackend) OpenOut(portID int) (OutHandle, error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, fmt.Errorf("enumerate midi outputs: %w", err)
	}
	if portID < 0 || portID >= len(outs) {
		return nil, fmt.Errorf("midi output port %d out of range", portID)
	}

	out := outs[portID]
	if err := out.Open(); err != nil {
		return nil, fmt.Errorf("open midi output %q: %w", out.String(), err)
	}

	return &rtmidiOut{out: out}, nil
}

type rtmidiIn struct {
	in   drivers.In
	stop func()
}

func (h *rtmidiIn) Close() error {
	h.stop()
	return h.in.Close()
}

type rtmidiOut struct {
	out drivers.Out
}

func (h *rtmidiOut) Send(data []byte) error {
	return h.out.Send(data)
}

func (h *rtmidiOut) Close() error {
	return h.out.Close()
}
