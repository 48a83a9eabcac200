// Package peeraddr defines the PeerAddress value used as the unique key
// identifying a Client: the transport-level remote endpoint.
package peeraddr

import "fmt"

// Transport names a transport-level protocol a peer is reachable over.
type Transport string

const (
	UDP Transport = "UDP"
	TCP Transport = "TCP"
)

// PeerAddress is the transport-level remote endpoint a Client owns. It is
// comparable and usable as a map key, which is how the router indexes
// workers; the registrations table stores it as a username's address.
type PeerAddress struct {
	IP        string
	Port      int
	Transport Transport
}

func (a PeerAddress) String() string {
	return fmt.Sprintf("%s:%d/%s", a.IP, a.Port, a.Transport)
}
