// Package server implements the orchestrator that builds the router, starts
// the UDP server and TCP server, and waits for both of them.
package server

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/client"
	"github.com/sebas/sipline/internal/dialogs"
	"github.com/sebas/sipline/internal/idgen"
	"github.com/sebas/sipline/internal/registrations"
	"github.com/sebas/sipline/internal/router"
	"github.com/sebas/sipline/internal/transport/tcp"
	"github.com/sebas/sipline/internal/transport/udp"
)

// Config is everything the orchestrator needs to bring the signaling core
// up on one bind address.
type Config struct {
	BindAddr   string // "ip:port", shared by UDP and TCP.
	Domain     string
	BackToBack bool
}

// Server owns the router and both transport listeners for the process
// lifetime.
type Server struct {
	cfg Config
	udp *udp.Server
	tcp *tcp.Server
}

// New binds both sockets at cfg.BindAddr and wires the router and Client
// factory shared between them. It does not start any loop yet; call Run.
func New(cfg Config) (*Server, error) {
	udpConn, err := udp.Listen(cfg.BindAddr)
	if err != nil {
		return nil, fmt.Errorf("bind udp %s: %w", cfg.BindAddr, err)
	}

	tcpListener, err := tcp.Listen(cfg.BindAddr)
	if err != nil {
		udpConn.Close()
		return nil, fmt.Errorf("bind tcp %s: %w", cfg.BindAddr, err)
	}

	rt := router.New()
	factory := client.NewFactory(
		client.Config{Domain: cfg.Domain, BackToBack: cfg.BackToBack},
		registrations.New(),
		dialogs.New(),
		idgen.NewBranchGenerator(),
	)

	return &Server{
		cfg: cfg,
		udp: udp.New(udpConn, rt, factory),
		tcp: tcp.New(tcpListener, rt, factory),
	}, nil
}

// Run starts the UDP and TCP servers concurrently and blocks until both
// have stopped (typically because Close was called). It returns the error
// of the first server to stop, or the second's if the first returned nil.
func (s *Server) Run() error {
	errCh := make(chan error, 2)

	go func() {
		log.Info().Str("component", "server").Str("bind", s.cfg.BindAddr).Msg("udp server starting")
		errCh <- s.udp.Run()
	}()
	go func() {
		log.Info().Str("component", "server").Str("bind", s.cfg.BindAddr).Msg("tcp server starting")
		errCh <- s.tcp.Run()
	}()

	first := <-errCh
	second := <-errCh
	if first != nil {
		return first
	}
	return second
}

// Close shuts down the UDP socket and TCP listener, unblocking Run.
func (s *Server) Close() error {
	udpErr := s.udp.Close()
	tcpErr := s.tcp.Close()
	if udpErr != nil {
		return udpErr
	}
	return tcpErr
}
