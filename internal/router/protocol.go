package router

import "github.com/oda-midichan/midichan/internal/message"

// Request is one control-RPC request the router understands.
type Request interface {
	isRequest()
}

type AddInput struct {
	Name string
	Recv <-chan message.Message
}

type AddOutput struct {
	Name string
	Send chan<- message.Message
}

type RemoveInput struct{ Name string }

type RemoveOutput struct{ Name string }

type QueryInput struct{ Name string }

type QueryOutput struct{ Name string }

type QueryAllInputs struct{}

type QueryAllOutputs struct{}

type Shutdown struct{}

func (AddInput) isRequest()        {}
func (AddOutput) isRequest()       {}
func (RemoveInput) isRequest()     {}
func (RemoveOutput) isRequest()    {}
func (QueryInput) isRequest()      {}
func (QueryOutput) isRequest()     {}
func (QueryAllInputs) isRequest()  {}
func (QueryAllOutputs) isRequest() {}
func (Shutdown) isRequest()        {}

// Reply is one control-RPC reply.
type Reply interface {
	isReply()
}

type Ok struct{}

type Error struct{ Message string }

type Device struct {
	Name    string
	Present bool
}

type List struct{ Names []string }

func (Ok) isReply()     {}
func (Error) isReply()  {}
func (Device) isReply() {}
func (List) isReply()   {}
