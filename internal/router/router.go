// Package router implements the many-to-many MIDI dispatcher: N dynamic
// input channels fanned to M dynamic output channels through a
// caller-supplied classifier, with live add/remove of endpoints.
package router

import (
	"fmt"
	"reflect"

	"github.com/oda-midichan/midichan/internal/message"
	"github.com/oda-midichan/midichan/internal/rpc"
)

// Classifier maps one message to the list of output names it should be
// fanned to. It may mutate the message (e.g. to stamp a new device field)
// before it is cloned out to each target.
type Classifier func(*message.Message) []string

// ByDevice fans each message to the output whose name equals the message's
// Device field.
func ByDevice(m *message.Message) []string {
	return []string{m.Device}
}

// OnOff fans each message to "off" when its velocity is zero, "on" otherwise.
func OnOff(m *message.Message) []string {
	if m.Velocity == 0 {
		return []string{"off"}
	}
	return []string{"on"}
}

// MirrorAll fans every message to every current output.
func MirrorAll(*message.Message) []string {
	return []string{"all"}
}

// Router is the classify-and-fan-out actor. It owns its input/output
// endpoint maps exclusively on its own goroutine; all outside access goes
// through the control RPC.
type Router struct {
	reqCh   chan Request
	replyCh chan Reply
}

// New starts a router goroutine using classify to route every inbound
// message and returns the caller-facing handle.
func New(classify Classifier) *Router {
	reqCh := make(chan Request)
	replyCh := make(chan Reply, 2)

	r := &Router{reqCh: reqCh, replyCh: replyCh}
	go r.run(classify)
	return r
}

// ByDeviceName is the stock "split by device" router.
func ByDeviceName() *Router { return New(ByDevice) }

// OnOffRouter is the stock on/off router.
func OnOffRouter() *Router { return New(OnOff) }

// Mirror is the stock mirror-all router.
func Mirror() *Router { return New(MirrorAll) }

func (r *Router) call(req Request, label string) (Reply, error) {
	return rpc.Call(r.reqCh, r.replyCh, req, label)
}

// AddInput registers recv as an input endpoint under name, replacing any
// prior endpoint of the same name.
func (r *Router) AddInput(name string, recv <-chan message.Message) error {
	return okOrErr(r.call(AddInput{Name: name, Recv: recv}, "router"))
}

// AddOutput registers send as an output endpoint under name, replacing any
// prior endpoint of the same name.
func (r *Router) AddOutput(name string, send chan<- message.Message) error {
	return okOrErr(r.call(AddOutput{Name: name, Send: send}, "router"))
}

func (r *Router) RemoveInput(name string) error {
	return okOrErr(r.call(RemoveInput{Name: name}, "router"))
}

func (r *Router) RemoveOutput(name string) error {
	return okOrErr(r.call(RemoveOutput{Name: name}, "router"))
}

func (r *Router) QueryInput(name string) (bool, error) {
	return queryPresence(r.call(QueryInput{Name: name}, "router"))
}

func (r *Router) QueryOutput(name string) (bool, error) {
	return queryPresence(r.call(QueryOutput{Name: name}, "router"))
}

func (r *Router) QueryAllInputs() ([]string, error) {
	return queryList(r.call(QueryAllInputs{}, "router"))
}

func (r *Router) QueryAllOutputs() ([]string, error) {
	return queryList(r.call(QueryAllOutputs{}, "router"))
}

// ShutdownAndWait sends Shutdown and waits for the reply.
func (r *Router) ShutdownAndWait() error {
	return okOrErr(r.call(Shutdown{}, "router"))
}

func queryPresence(reply Reply, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	dev, ok := reply.(Device)
	if !ok {
		return false, fmt.Errorf("router desync")
	}
	return dev.Present, nil
}

func queryList(reply Reply, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	list, ok := reply.(List)
	if !ok {
		return nil, fmt.Errorf("router desync")
	}
	return list.Names, nil
}

func okOrErr(reply Reply, err error) error {
	if err != nil {
		return err
	}
	switch r := reply.(type) {
	case Ok:
		return nil
	case Error:
		return fmt.Errorf("%s", r.Message)
	default:
		return fmt.Errorf("router desync")
	}
}

func (r *Router) run(classify Classifier) {
	inputs := map[string]<-chan message.Message{}
	outputs := map[string]chan<- message.Message{}

	for {
		cases := make([]reflect.SelectCase, 0, len(inputs)+1)
		names := make([]string, 0, len(inputs))

		for name, in := range inputs {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(in)})
			names = append(names, name)
		}
		controlIdx := len(cases)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(r.reqCh)})

		chosen, value, ok := reflect.Select(cases)

		if chosen == controlIdx {
			if !ok {
				return
			}
			req := value.Interface().(Request)

			switch rq := req.(type) {
			case AddInput:
				inputs[rq.Name] = rq.Recv
				r.replyCh <- Ok{}

			case AddOutput:
				outputs[rq.Name] = rq.Send
				r.replyCh <- Ok{}

			case RemoveInput:
				delete(inputs, rq.Name)
				r.replyCh <- Ok{}

			case RemoveOutput:
				delete(outputs, rq.Name)
				r.replyCh <- Ok{}

			case QueryInput:
				_, present := inputs[rq.Name]
				r.replyCh <- Device{Name: rq.Name, Present: present}

			case QueryOutput:
				_, present := outputs[rq.Name]
				r.replyCh <- Device{Name: rq.Name, Present: present}

			case QueryAllInputs:
				r.replyCh <- List{Names: keys(inputs)}

			case QueryAllOutputs:
				r.replyCh <- List{Names: outputKeys(outputs)}

			case Shutdown:
				r.replyCh <- Ok{}
				return

			default:
				r.replyCh <- Error{Message: "router: unknown command"}
			}

			continue
		}

		if !ok {
			// the input's sender hung up; drop it from the select set next round.
			delete(inputs, names[chosen])
			continue
		}

		msg := value.Interface().(message.Message)
		targets := classify(&msg)

		for _, target := range targets {
			if target == "all" {
				for _, out := range outputs {
					out <- msg
				}
				continue
			}
			if out, present := outputs[target]; present {
				out <- msg
			}
		}
	}
}

func keys(m map[string]<-chan message.Message) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func outputKeys(m map[string]chan<- message.Message) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
