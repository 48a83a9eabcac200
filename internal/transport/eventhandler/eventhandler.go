// Package eventhandler holds the two transport-specific adapters
// translating a Client's emitted clientevent.Event values into either a
// send to the router or a transport-level write. A Client never imports
// this package or knows which one it's wired to.
package eventhandler

import (
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/clientevent"
	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/sipmsg"
)

// RoutedSender is the subset of router.Router an event handler needs to
// hand off a Route event.
type RoutedSender interface {
	Routed(addr peeraddr.PeerAddress, msg sipmsg.Message)
}

// UDPWriter is the subset of the UDP server's writer mailbox an event
// handler needs to hand off a Send event.
type UDPWriter interface {
	Write(addr peeraddr.PeerAddress, msg sipmsg.Message)
}

// UDP is the Client-event handler for a UDP-owned peer: Send renders to the
// shared writer mailbox; Route hands off to the router.
type UDP struct {
	PeerAddr peeraddr.PeerAddress
	Router   RoutedSender
	Writer   UDPWriter
}

func (h *UDP) Emit(e clientevent.Event) {
	switch ev := e.(type) {
	case clientevent.Send:
		h.Writer.Write(h.PeerAddr, ev.Msg)
	case clientevent.Route:
		h.Router.Routed(ev.Addr, ev.Msg)
	default:
		log.Error().Str("component", "eventhandler").Msg("unknown client event type")
	}
}

// TCP is the Client-event handler for a TCP connection: Send writes
// directly to the connection's stream; Route hands off to the router. A
// single Client's events are always emitted from its own worker goroutine
// one at a time, so Conn needs no locking here.
type TCP struct {
	Conn   io.Writer
	Router RoutedSender
}

func (h *TCP) Emit(e clientevent.Event) {
	switch ev := e.(type) {
	case clientevent.Send:
		if _, err := h.Conn.Write(ev.Msg.Bytes()); err != nil {
			log.Error().Err(err).Str("component", "eventhandler").Msg("tcp write failed, dropping message")
		}
	case clientevent.Route:
		h.Router.Routed(ev.Addr, ev.Msg)
	default:
		log.Error().Str("component", "eventhandler").Msg("unknown client event type")
	}
}
