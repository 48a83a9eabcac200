// Command sipline runs the SIP registrar/proxy/B2BUA signaling core on one
// bind address, over UDP and TCP.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/config"
	"github.com/sebas/sipline/internal/logging"
	"github.com/sebas/sipline/internal/server"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logging.Init()

	srv, err := server.New(server.Config{
		BindAddr:   cfg.BindAddr(),
		Domain:     cfg.IP,
		BackToBack: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		if err := srv.Close(); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}()

	log.Info().Str("bind", cfg.BindAddr()).Msg("sipline listening")
	if err := srv.Run(); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
