// Package tcp implements the TCP accept loop and one per-connection
// reader/worker pair.
//
// Framing is a known limitation: a single read into a fixed buffer is
// assumed to contain exactly one complete SIP message. Real SIP-over-TCP
// needs Content-Length-delimited framing across reads; that is out of
// scope here.
package tcp

import (
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/client"
	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/router"
	"github.com/sebas/sipline/internal/sipmsg"
	"github.com/sebas/sipline/internal/transport/eventhandler"
	"github.com/sebas/sipline/internal/worker"
)

// readBufferSize is the single-read framing buffer described above.
const readBufferSize = 4096

// Server accepts TCP connections and spawns one Client/worker per
// connection.
type Server struct {
	listener net.Listener
	router   *router.Router
	factory  *client.Factory
}

// Listen binds a TCP listener at bindAddr ("ip:port").
func Listen(bindAddr string) (net.Listener, error) {
	return net.Listen("tcp", bindAddr)
}

// New constructs a Server over an already-bound listener.
func New(listener net.Listener, rt *router.Router, factory *client.Factory) *Server {
	return &Server{listener: listener, router: rt, factory: factory}
}

// Close stops accepting new connections, unblocking Run's next Accept with
// an error. Connections already accepted are unaffected.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Run accepts connections until the listener errors or is closed.
func (s *Server) Run() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			log.Error().Err(err).Str("component", "tcp").Msg("accept failed, stopping acceptor")
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	remote, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		log.Error().Str("component", "tcp").Msg("connection has no TCP remote address, closing")
		conn.Close()
		return
	}
	addr := peeraddr.PeerAddress{IP: remote.IP.String(), Port: remote.Port, Transport: peeraddr.TCP}
	connID := uuid.NewString()

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Debug().Err(err).Str("component", "tcp").Str("conn", connID).Str("peer", addr.String()).
			Msg("connection closed before a first message arrived")
		conn.Close()
		return
	}

	first, err := sipmsg.ParseMessage(buf[:n])
	if err != nil {
		log.Debug().Err(err).Str("component", "tcp").Str("conn", connID).Str("peer", addr.String()).
			Msg("parse error on first message, dropping connection")
		conn.Close()
		return
	}

	log.Info().Str("component", "tcp").Str("conn", connID).Str("peer", addr.String()).
		Msg("connection accepted")

	sink := &eventhandler.TCP{Conn: conn, Router: s.router}
	c := s.factory.New(addr, sink)
	w := worker.Start(c)
	s.router.RegisterWorker(addr, w)
	w.Received(first)

	s.readLoop(conn, addr, connID, w)
}

func (s *Server) readLoop(conn net.Conn, addr peeraddr.PeerAddress, connID string, w *worker.Worker) {
	defer func() {
		conn.Close()
		s.router.DeregisterWorker(addr)
		w.Close()
		log.Info().Str("component", "tcp").Str("conn", connID).Str("peer", addr.String()).
			Msg("connection closed")
	}()

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Debug().Err(err).Str("component", "tcp").Str("conn", connID).Str("peer", addr.String()).
				Msg("read error")
			return
		}

		msg, err := sipmsg.ParseMessage(buf[:n])
		if err != nil {
			log.Debug().Err(err).Str("component", "tcp").Str("conn", connID).Str("peer", addr.String()).
				Msg("parse error, dropping frame")
			continue
		}
		w.Received(msg)
	}
}
