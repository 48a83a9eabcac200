// Package clientevent defines the actions a Client emits instead of calling
// into the router or transport directly. This inverts control so a Client
// is testable with a fake sink and transport changes never touch protocol
// code.
package clientevent

import (
	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/sipmsg"
)

// Event is one action a Client asks its sink to perform.
type Event interface {
	isEvent()
}

// Send asks the sink to deliver msg to this Client's own peer.
type Send struct {
	Msg sipmsg.Message
}

func (Send) isEvent() {}

// Route asks the sink to hand msg to the Client that owns Addr.
type Route struct {
	Addr peeraddr.PeerAddress
	Msg  sipmsg.Message
}

func (Route) isEvent() {}

// Sink is the event sink a Client is constructed with. Implementations live
// in internal/transport/eventhandler (one per transport).
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a plain function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }
