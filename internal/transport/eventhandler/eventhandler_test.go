package eventhandler

import (
	"bytes"
	"testing"

	"github.com/sebas/sipline/internal/clientevent"
	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/sipmsg"
)

type recordingRouter struct {
	addr peeraddr.PeerAddress
	msg  sipmsg.Message
}

func (r *recordingRouter) Routed(addr peeraddr.PeerAddress, msg sipmsg.Message) {
	r.addr = addr
	r.msg = msg
}

type recordingWriter struct {
	addr peeraddr.PeerAddress
	msg  sipmsg.Message
}

func (w *recordingWriter) Write(addr peeraddr.PeerAddress, msg sipmsg.Message) {
	w.addr = addr
	w.msg = msg
}

func TestUDPHandlerSendGoesToWriter(t *testing.T) {
	writer := &recordingWriter{}
	router := &recordingRouter{}
	h := &UDP{PeerAddr: peeraddr.PeerAddress{IP: "127.0.0.1", Port: 40001, Transport: peeraddr.UDP}, Router: router, Writer: writer}

	msg := sipmsg.NewResponse(200, sipmsg.ReasonOK)
	h.Emit(clientevent.Send{Msg: msg})

	if writer.msg != sipmsg.Message(msg) {
		t.Fatal("expected Send to reach the writer")
	}
	if router.msg != nil {
		t.Fatal("Send must not reach the router")
	}
}

func TestUDPHandlerRouteGoesToRouter(t *testing.T) {
	writer := &recordingWriter{}
	router := &recordingRouter{}
	h := &UDP{Router: router, Writer: writer}

	dest := peeraddr.PeerAddress{IP: "127.0.0.1", Port: 40002, Transport: peeraddr.UDP}
	msg := sipmsg.NewRequest("INVITE", sipmsg.Uri{Host: "server.example"})
	h.Emit(clientevent.Route{Addr: dest, Msg: msg})

	if router.addr != dest || router.msg != sipmsg.Message(msg) {
		t.Fatal("expected Route to reach the router with the destination address")
	}
	if writer.msg != nil {
		t.Fatal("Route must not reach the writer")
	}
}

func TestTCPHandlerSendWritesBytes(t *testing.T) {
	var buf bytes.Buffer
	router := &recordingRouter{}
	h := &TCP{Conn: &buf, Router: router}

	msg := sipmsg.NewResponse(200, sipmsg.ReasonOK)
	h.Emit(clientevent.Send{Msg: msg})

	if buf.Len() == 0 {
		t.Fatal("expected bytes written to the connection")
	}
}

func TestTCPHandlerRouteGoesToRouter(t *testing.T) {
	var buf bytes.Buffer
	router := &recordingRouter{}
	h := &TCP{Conn: &buf, Router: router}

	dest := peeraddr.PeerAddress{IP: "127.0.0.1", Port: 40002, Transport: peeraddr.TCP}
	msg := sipmsg.NewRequest("BYE", sipmsg.Uri{Host: "server.example"})
	h.Emit(clientevent.Route{Addr: dest, Msg: msg})

	if router.addr != dest {
		t.Fatal("expected Route to reach the router with the destination address")
	}
	if buf.Len() != 0 {
		t.Fatal("Route must not write to the connection")
	}
}
