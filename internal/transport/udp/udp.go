// Package udp implements the UDP server's reader and writer loops, owning
// one datagram socket shared by every peer it talks to.
package udp

import (
	"net"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/client"
	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/router"
	"github.com/sebas/sipline/internal/sipmsg"
	"github.com/sebas/sipline/internal/transport/eventhandler"
	"github.com/sebas/sipline/internal/worker"
)

// minDatagramLen filters keepalive payloads such as a bare "\r\n\r\n".
const minDatagramLen = 4

type writerMsg struct {
	addr peeraddr.PeerAddress
	msg  sipmsg.Message
}

// Server owns a UDP socket and cooperates two loops over it: a reader that
// dispatches datagrams to per-address Client workers, and a writer mailbox
// Client-event handlers send through.
type Server struct {
	conn    *net.UDPConn
	router  *router.Router
	factory *client.Factory

	writeMu     sync.Mutex
	writeCond   *sync.Cond
	writeQueue  []writerMsg
	writeClosed bool
}

// Listen binds a UDP socket at bindAddr ("ip:port").
func Listen(bindAddr string) (*net.UDPConn, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", addr)
}

// New constructs a Server over an already-bound socket.
func New(conn *net.UDPConn, rt *router.Router, factory *client.Factory) *Server {
	s := &Server{conn: conn, router: rt, factory: factory}
	s.writeCond = sync.NewCond(&s.writeMu)
	return s
}

// Run starts the writer loop and blocks running the reader loop until the
// socket errors or is closed (e.g. by the caller on shutdown).
func (s *Server) Run() error {
	go s.writeLoop()
	return s.readLoop()
}

func (s *Server) readLoop() error {
	buf := make([]byte, 65535)
	for {
		n, udpAddr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			log.Error().Err(err).Str("component", "udp").Msg("read failed, stopping reader")
			return err
		}
		if n <= minDatagramLen {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		msg, err := sipmsg.ParseMessage(data)
		if err != nil {
			log.Debug().Err(err).Str("component", "udp").Str("peer", udpAddr.String()).
				Msg("parse error, dropping datagram")
			continue
		}

		addr := peeraddr.PeerAddress{IP: udpAddr.IP.String(), Port: udpAddr.Port, Transport: peeraddr.UDP}

		if s.router.Has(addr) {
			s.router.Received(addr, msg)
			continue
		}

		sink := &eventhandler.UDP{PeerAddr: addr, Router: s.router, Writer: s}
		c := s.factory.New(addr, sink)
		w := worker.Start(c)
		s.router.RegisterWorker(addr, w)
		// Deliver the first message directly to the new worker instead of
		// through the router, avoiding a race between this registration and
		// a second datagram from the same address arriving before it lands.
		w.Received(msg)
	}
}

func (s *Server) writeLoop() {
	for {
		s.writeMu.Lock()
		for len(s.writeQueue) == 0 && !s.writeClosed {
			s.writeCond.Wait()
		}
		if len(s.writeQueue) == 0 {
			s.writeMu.Unlock()
			return
		}
		item := s.writeQueue[0]
		s.writeQueue = s.writeQueue[1:]
		s.writeMu.Unlock()

		udpAddr := &net.UDPAddr{IP: net.ParseIP(item.addr.IP), Port: item.addr.Port}
		if _, err := s.conn.WriteToUDP(item.msg.Bytes(), udpAddr); err != nil {
			log.Error().Err(err).Str("component", "udp").Str("peer", item.addr.String()).
				Msg("write failed, dropping message")
		}
	}
}

// Write implements eventhandler.UDPWriter: it enqueues msg for addr without
// blocking the caller.
func (s *Server) Write(addr peeraddr.PeerAddress, msg sipmsg.Message) {
	s.writeMu.Lock()
	if s.writeClosed {
		s.writeMu.Unlock()
		return
	}
	s.writeQueue = append(s.writeQueue, writerMsg{addr: addr, msg: msg})
	s.writeMu.Unlock()
	s.writeCond.Signal()
}

// Close stops the writer loop and the underlying socket, unblocking the
// reader loop's next ReadFromUDP with an error.
func (s *Server) Close() error {
	s.writeMu.Lock()
	s.writeClosed = true
	s.writeMu.Unlock()
	s.writeCond.Broadcast()
	return s.conn.Close()
}
