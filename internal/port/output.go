package port

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/oda-midichan/midichan/internal/message"
	"github.com/oda-midichan/midichan/internal/rpc"
)

// OutputSupervisor owns a set of open MIDI output ports and writes every
// message it receives on its data channel to whichever port matches the
// message's Device field.
type OutputSupervisor struct {
	reqCh   chan Request
	replyCh chan Reply
	dataCh  chan message.Message
}

// NewOutputSupervisor starts the supervisor goroutine against backend and
// returns the caller-facing handle.
func NewOutputSupervisor(backend Backend) *OutputSupervisor {
	reqCh := make(chan Request)
	replyCh := make(chan Reply, 2)
	dataCh := make(chan message.Message, dataDepth)

	sup := &OutputSupervisor{reqCh: reqCh, replyCh: replyCh, dataCh: dataCh}
	go sup.run(backend)
	return sup
}

// MidiOut returns the channel callers post outbound messages to.
func (s *OutputSupervisor) MidiOut() chan<- message.Message {
	return s.dataCh
}

func (s *OutputSupervisor) call(req Request, label string) (Reply, error) {
	return rpc.Call(s.reqCh, s.replyCh, req, label)
}

// Open registers a new output port under name, backed by the backend's
// numeric port id.
func (s *OutputSupervisor) Open(name string, portID int) error {
	return okOrErr(s.call(OpenOut{Name: name, PortID: portID}, "output device"))
}

func (s *OutputSupervisor) Close(name string) error {
	return okOrErr(s.call(CloseOut{Name: name}, "output device"))
}

func (s *OutputSupervisor) Query(name string) (bool, error) {
	reply, err := s.call(QueryDevice{Name: name}, "output device")
	if err != nil {
		return false, err
	}
	dev, ok := reply.(Device)
	if !ok {
		return false, fmt.Errorf("output device desync")
	}
	return dev.Present, nil
}

func (s *OutputSupervisor) QueryList() ([]string, error) {
	reply, err := s.call(QueryList{}, "output device")
	if err != nil {
		return nil, err
	}
	list, ok := reply.(List)
	if !ok {
		return nil, fmt.Errorf("output device desync")
	}
	return list.Names, nil
}

// ShutdownAndWait sends Shutdown and waits for the reply.
func (s *OutputSupervisor) ShutdownAndWait() error {
	return okOrErr(s.call(Shutdown{}, "output device"))
}

func (s *OutputSupervisor) run(backend Backend) {
	handles := map[string]OutHandle{}

	for {
		select {
		case req := <-s.reqCh:
			switch r := req.(type) {
			case OpenOut:
				if _, exists := handles[r.Name]; exists {
					s.replyCh <- Error{Message: "output handler: device already added"}
					continue
				}

				handle, err := backend.OpenOut(r.PortID)
				if err != nil {
					s.replyCh <- Error{Message: fmt.Sprintf("output handler: failed to add device: %s", err)}
					continue
				}

				handles[r.Name] = handle
				s.replyCh <- Ok{}

			case CloseOut:
				if h, ok := handles[r.Name]; ok {
					h.Close()
					delete(handles, r.Name)
				}
				s.replyCh <- Ok{}

			case QueryDevice:
				_, ok := handles[r.Name]
				s.replyCh <- Device{Name: r.Name, Present: ok}

			case QueryList:
				names, err := backend.Outs()
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
				s.replyCh <- Error{Message: "output handler: unknown command"}
			}

		case msg := <-s.dataCh:
			handle, ok := handles[msg.Device]
			if !ok {
				continue
			}
			if err := handle.Send(msg.ToRaw()); err != nil {
				log.Error("output handler: failed to write device", "device", msg.Device, "err", err)
				s.replyCh <- Error{Message: fmt.Sprintf("output handler: failed to write device: %s", err)}
			}
		}
	}
}
