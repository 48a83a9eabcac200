// Package registrations holds the username -> PeerAddress table the
// registrar maintains and the proxy consults when routing.
package registrations

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/peeraddr"
)

// Table maps registered usernames to the peer address they last REGISTERed
// from. All operations are mutually exclusive; contention stays low since
// the critical section never does I/O, only a map read/write.
type Table struct {
	mu   sync.Mutex
	byAOR map[string]peeraddr.PeerAddress
}

// New returns an empty registrations table.
func New() *Table {
	return &Table{byAOR: make(map[string]peeraddr.PeerAddress)}
}

// Register inserts or updates username's address. It returns true iff the
// username was previously absent. A changed address (as opposed to a fresh
// or idempotent re-REGISTER) is logged at info level.
func (t *Table) Register(username string, addr peeraddr.PeerAddress) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, existed := t.byAOR[username]
	t.byAOR[username] = addr

	if existed && old != addr {
		log.Info().
			Str("component", "registrations").
			Str("user", username).
			Str("old_addr", old.String()).
			Str("new_addr", addr.String()).
			Msg("registration address changed")
	}

	return !existed
}

// Unregister removes username. It returns true iff the username was present.
func (t *Table) Unregister(username string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, existed := t.byAOR[username]
	delete(t.byAOR, username)
	return existed
}

// AddressOf returns the address registered for username, if any.
func (t *Table) AddressOf(username string) (peeraddr.PeerAddress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	addr, ok := t.byAOR[username]
	return addr, ok
}
