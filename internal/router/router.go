// Package router fans routed messages to the worker owning the destination
// peer address.
package router

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/sipmsg"
)

// Worker is the subset of worker.Worker the router needs. Defined locally
// to avoid a compile-time dependency on the worker package's internals.
type Worker interface {
	Received(msg sipmsg.Message)
	Routed(msg sipmsg.Message)
}

// Router holds one sender-handle per registered peer address. It conceptually
// "runs on a single worker"; here that's realized as a mutex-guarded map
// rather than a dedicated goroutine with its own inbox, since the critical
// section is a single map operation with no I/O — identical to the
// registrations/dialogs tables' discipline.
type Router struct {
	mu      sync.Mutex
	workers map[peeraddr.PeerAddress]Worker
}

// New returns an empty router.
func New() *Router {
	return &Router{workers: make(map[peeraddr.PeerAddress]Worker)}
}

// RegisterWorker adds a new worker for addr. A duplicate registration for
// an address already known is logged as an error and otherwise ignored —
// the first registration for an address wins.
func (r *Router) RegisterWorker(addr peeraddr.PeerAddress, w Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[addr]; exists {
		log.Error().Str("component", "router").Str("peer", addr.String()).
			Msg("duplicate worker registration for address")
		return
	}
	r.workers[addr] = w
}

// Has reports whether addr already has a registered worker.
func (r *Router) Has(addr peeraddr.PeerAddress) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.workers[addr]
	return ok
}

// DeregisterWorker removes addr's worker, e.g. when a TCP connection closes.
func (r *Router) DeregisterWorker(addr peeraddr.PeerAddress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workers, addr)
}

// Received forwards msg to addr's worker as a Received (directly-arrived)
// message.
func (r *Router) Received(addr peeraddr.PeerAddress, msg sipmsg.Message) {
	w, ok := r.lookup(addr)
	if !ok {
		log.Error().Str("component", "router").Str("peer", addr.String()).
			Msg("no worker registered for address, dropping received message")
		return
	}
	w.Received(msg)
}

// Routed forwards msg to addr's worker as a Routed (B2BUA/proxy-delivered)
// message.
func (r *Router) Routed(addr peeraddr.PeerAddress, msg sipmsg.Message) {
	w, ok := r.lookup(addr)
	if !ok {
		log.Error().Str("component", "router").Str("peer", addr.String()).
			Msg("no worker registered for address, dropping routed message")
		return
	}
	w.Routed(msg)
}

func (r *Router) lookup(addr peeraddr.PeerAddress) (Worker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[addr]
	return w, ok
}
