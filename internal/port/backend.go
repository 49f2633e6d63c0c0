package port

// Backend is the seam over the OS MIDI library the spec's §6 "Backend MIDI
// library" describes: enumerate ports, open input with a callback, open
// output with a send method. Production code is backed by rtmidiBackend
// (rtmidi.go); tests substitute a fake so the supervisors can be exercised
// without real hardware.
type Backend interface {
	Ins() ([]string, error)
	Outs() ([]string, error)
	OpenIn(portID int, onMessage func(timestampUs uint64, data []byte)) (InHandle, error)
	OpenOut(portID int) (OutHandle, error)
}

// InHandle is an open input port. Close stops delivery and releases the
// backend handle.
type InHandle interface {
	Close() error
}

// OutHandle is an open output port.
type OutHandle interface {
	Send(data []byte) error
	Close() error
}
