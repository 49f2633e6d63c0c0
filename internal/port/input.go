package port

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/oda-midichan/midichan/internal/message"
	"github.com/oda-midichan/midichan/internal/rpc"
)

// InputSupervisor owns a set of open MIDI input ports and publishes every
// inbound MIDI event onto a single bounded data channel. It runs on its own
// goroutine for its entire lifetime; all mutation of its port map happens
// only on that goroutine, driven by the control RPC.
type InputSupervisor struct {
	reqCh   chan Request
	replyCh chan Reply
	dataCh  chan message.Message
}

// NewInputSupervisor starts the supervisor goroutine against backend and
// returns the caller-facing handle.
func NewInputSupervisor(backend Backend) *InputSupervisor {
	reqCh := make(chan Request)
	replyCh := make(chan Reply, 2)
	dataCh := make(chan message.Message, dataDepth)

	sup := &InputSupervisor{reqCh: reqCh, replyCh: replyCh, dataCh: dataCh}
	go sup.run(backend)
	return sup
}

// MidiIn returns the channel every opened input port's messages are
// delivered on.
func (s *InputSupervisor) MidiIn() <-chan message.Message {
	return s.dataCh
}

func (s *InputSupervisor) call(req Request, label string) (Reply, error) {
	return rpc.Call(s.reqCh, s.replyCh, req, label)
}

// Open registers a new input port under name, backed by the backend's
// numeric port id.
func (s *InputSupervisor) Open(name string, portID int) error {
	return okOrErr(s.call(OpenIn{Name: name, PortID: portID}, "input device"))
}

func (s *InputSupervisor) Close(name string) error {
	return okOrErr(s.call(CloseIn{Name: name}, "input device"))
}

func (s *InputSupervisor) Query(name string) (bool, error) {
	reply, err := s.call(QueryDevice{Name: name}, "input device")
	if err != nil {
		return false, err
	}
	dev, ok := reply.(Device)
	if !ok {
		return false, fmt.Errorf("input device desync")
	}
	return dev.Present, nil
}

func (s *InputSupervisor) QueryList() ([]string, error) {
	reply, err := s.call(QueryList{}, "input device")
	if err != nil {
		return nil, err
	}
	list, ok := reply.(List)
	if !ok {
		return nil, fmt.Errorf("input device desync")
	}
	return list.Names, nil
}

// ShutdownAndWait sends Shutdown and waits for the reply, the same thing
// the Rust original does in Drop.
func (s *InputSupervisor) ShutdownAndWait() error {
	return okOrErr(s.call(Shutdown{}, "input device"))
}

func (s *InputSupervisor) run(backend Backend) {
	handles := map[string]InHandle{}

	for {
		req := <-s.reqCh

		switch r := req.(type) {
		case OpenIn:
			if _, exists := handles[r.Name]; exists {
				s.replyCh <- Error{Message: "input handler: device already added"}
				continue
			}

			name := r.Name
			handle, err := backend.OpenIn(r.PortID, func(timestampUs uint64, data []byte) {
				m := message.FromRaw(name, timestampUs, data)
				// Logged rather than replied as Error("channel timeout"): this
				// callback runs on the backend's own thread, and pushing to
				// replyCh here would race a concurrent caller's desync check.
				if !rpc.SendTimeout(s.dataCh, m) {
					log.Error("input handler: channel timeout", "device", name)
				}
			})
			if err != nil {
				s.replyCh <- Error{Message: fmt.Sprintf("input handler: failed to add device: %s", err)}
				continue
			}

			handles[r.Name] = handle
			s.replyCh <- Ok{}

		case CloseIn:
			if h, ok := handles[r.Name]; ok {
				h.Close()
				delete(handles, r.Name)
			}
			s.replyCh <- Ok{}

		case QueryDevice:
			_, ok := handles[r.Name]
			s.replyCh <- Device{Name: r.Name, Present: ok}

		case QueryList:
			names, err := backend.Ins()
			if err != nil {
				s.replyCh <- Error{Message: err.Error()}
				continue
			}
			s.replyCh <- List{Names: names}

		case Shutdown:
			for name, h := range handles {
				h.Close()
				delete(handles, name)
			}
			s.replyCh <- Ok{}
			return

		default:
			s.replyCh <- Error{Message: "input handler: unknown command"}
		}
	}
}
