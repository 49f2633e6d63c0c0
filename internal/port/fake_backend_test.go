package port

import "fmt"

// fakeBackend is an in-memory stand-in for the rtmidi-backed Backend, used
// so the supervisors can be exercised without real hardware.
type fakeBackend struct {
	insNames, outsNames []string

	failOpenIn, failOpenOut bool

	openIns  []*fakeInHandle
	openOuts []*fakeOutHandle
}

func (b *fakeBackend) Ins() ([]string, error)  { return b.insNames, nil }
func (b *fakeBackend) Outs() ([]string, error) { return b.outsNames, nil }

func (b *fakeBackend) OpenIn(portID int, onMessage func(uint64, []byte)) (InHandle, error) {
	if b.failOpenIn {
		return nil, fmt.Errorf("fake: refused to open input %d", portID)
	}
	h := &fakeInHandle{onMessage: onMessage}
	b.openIns = append(b.openIns, h)
	return h, nil
}

func (b *fakeBackend) OpenOut(portID int) (OutHandle, error) {
	if b.failOpenOut {
		return nil, fmt.Errorf("fake: refused to open output %d", portID)
	}
	h := &fakeOutHandle{}
	b.openOuts = append(b.openOuts, h)
	return h, nil
}

type fakeInHandle struct {
	onMessage func(uint64, []byte)
	closed    bool
}

func (h *fakeInHandle) Close() error {
	h.closed = true
	return nil
}

func (h *fakeInHandle) deliver(timestampUs uint64, data []byte) {
	h.onMessage(timestampUs, data)
}

type fakeOutHandle struct {
	closed bool
	sent   [][]byte
	sendFn func([]byte) error
}

func (h *fakeOutHandle) Send(data []byte) error {
	h.sent = append(h.sent, data)
	if h.sendFn != nil {
		return h.sendFn(data)
	}
	return nil
}

func (h *fakeOutHandle) Close() error {
	h.closed = true
	return nil
}
