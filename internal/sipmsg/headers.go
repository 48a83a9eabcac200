package sipmsg

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is a single SIP header field. The shape mirrors sipgo's own
// sip.Header: a Name/Value pair that knows how to render itself, plus
// typed accessors layered over GenericHeader for anything this server
// doesn't specifically need to inspect.
type Header interface {
	Name() string
	Value() string
	String() string
}

func headerString(h Header) string {
	return h.Name() + ": " + h.Value()
}

// GenericHeader carries any header this server doesn't have a typed
// accessor for (e.g. Max-Forwards, User-Agent) so it still round-trips.
type GenericHeader struct {
	HeaderName string
	Contents   string
}

func (h *GenericHeader) Name() string  { return h.HeaderName }
func (h *GenericHeader) Value() string { return h.Contents }
func (h *GenericHeader) String() string { return headerString(h) }

// ViaHeader is the 'Via' header (RFC 3261 §20.42). Only a single hop is
// modeled; this server never receives or forwards multi-hop Via stacks
// itself (it replaces the top Via wholesale on the outgoing leg).
type ViaHeader struct {
	Transport string
	Host      string
	Port      int
	Params    Params
}

func (h *ViaHeader) Name() string { return "Via" }

func (h *ViaHeader) Value() string {
	var b strings.Builder
	b.WriteString("SIP/2.0/")
	b.WriteString(h.Transport)
	b.WriteByte(' ')
	b.WriteString(h.Host)
	if h.Port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(h.Port))
	}
	if len(h.Params) > 0 {
		b.WriteByte(';')
		b.WriteString(h.Params.String())
	}
	return b.String()
}

func (h *ViaHeader) String() string { return headerString(h) }

// Branch returns the branch= parameter, if any.
func (h *ViaHeader) Branch() (string, bool) {
	if h.Params == nil {
		return "", false
	}
	return h.Params.Get("branch")
}

func (h *ViaHeader) Clone() *ViaHeader {
	return &ViaHeader{Transport: h.Transport, Host: h.Host, Port: h.Port, Params: h.Params.Clone()}
}

// namedAddrHeader is the shared shape of From/To/Contact: an optional
// display name, a URI, and parameters (tag=, expires=, q=, ...).
type namedAddrHeader struct {
	DisplayName string
	Address     Uri
	Params      Params
}

func (h *namedAddrHeader) valueString() string {
	var b strings.Builder
	if h.DisplayName != "" {
		b.WriteByte('"')
		b.WriteString(h.DisplayName)
		b.WriteString("\" ")
	}
	b.WriteByte('<')
	b.WriteString(h.Address.String())
	b.WriteByte('>')
	if len(h.Params) > 0 {
		b.WriteByte(';')
		b.WriteString(h.Params.String())
	}
	return b.String()
}

// Tag returns the tag= parameter, if any.
func (h *namedAddrHeader) Tag() (string, bool) {
	if h.Params == nil {
		return "", false
	}
	return h.Params.Get("tag")
}

func (h *namedAddrHeader) clone() namedAddrHeader {
	return namedAddrHeader{DisplayName: h.DisplayName, Address: h.Address, Params: h.Params.Clone()}
}

// FromHeader is the 'From' header.
type FromHeader struct{ namedAddrHeader }

// NewFromHeader builds a From header for the given address, copying params.
func NewFromHeader(displayName string, address Uri, params Params) *FromHeader {
	return &FromHeader{namedAddrHeader{DisplayName: displayName, Address: address, Params: params}}
}

func (h *FromHeader) Name() string   { return "From" }
func (h *FromHeader) Value() string  { return h.valueString() }
func (h *FromHeader) String() string { return headerString(h) }
func (h *FromHeader) Clone() *FromHeader {
	return &FromHeader{namedAddrHeader: h.clone()}
}

// ToHeader is the 'To' header.
type ToHeader struct{ namedAddrHeader }

// NewToHeader builds a To header for the given address, copying params.
func NewToHeader(displayName string, address Uri, params Params) *ToHeader {
	return &ToHeader{namedAddrHeader{DisplayName: displayName, Address: address, Params: params}}
}

func (h *ToHeader) Name() string   { return "To" }
func (h *ToHeader) Value() string  { return h.valueString() }
func (h *ToHeader) String() string { return headerString(h) }
func (h *ToHeader) Clone() *ToHeader {
	return &ToHeader{namedAddrHeader: h.clone()}
}

// ContactHeader is the 'Contact' header. Only a single binding is modeled;
// this server never emits more than one Contact of its own.
type ContactHeader struct{ namedAddrHeader }

// NewContactHeader builds a Contact header for the given address.
func NewContactHeader(displayName string, address Uri, params Params) *ContactHeader {
	return &ContactHeader{namedAddrHeader{DisplayName: displayName, Address: address, Params: params}}
}

func (h *ContactHeader) Name() string   { return "Contact" }
func (h *ContactHeader) Value() string  { return h.valueString() }
func (h *ContactHeader) String() string { return headerString(h) }
func (h *ContactHeader) Clone() *ContactHeader {
	return &ContactHeader{namedAddrHeader: h.clone()}
}

// ExpiresParam returns the contact's own expires= parameter, used as a
// fallback when no dedicated Expires header is present.
func (h *ContactHeader) ExpiresParam() (int, bool) {
	if h.Params == nil {
		return 0, false
	}
	v, ok := h.Params.Get("expires")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CallIDHeader is the 'Call-ID' header.
type CallIDHeader string

func (h CallIDHeader) Name() string   { return "Call-ID" }
func (h CallIDHeader) Value() string  { return string(h) }
func (h CallIDHeader) String() string { return headerString(h) }

// CSeqHeader is the 'CSeq' header.
type CSeqHeader struct {
	Seq    uint32
	Method string
}

func (h *CSeqHeader) Name() string   { return "CSeq" }
func (h *CSeqHeader) Value() string  { return fmt.Sprintf("%d %s", h.Seq, h.Method) }
func (h *CSeqHeader) String() string { return headerString(h) }

// ExpiresHeader is the dedicated 'Expires' header (request or response).
type ExpiresHeader int

func (h ExpiresHeader) Name() string   { return "Expires" }
func (h ExpiresHeader) Value() string  { return strconv.Itoa(int(h)) }
func (h ExpiresHeader) String() string { return headerString(h) }

// ContentLengthHeader is the 'Content-Length' header.
type ContentLengthHeader int

func (h ContentLengthHeader) Name() string   { return "Content-Length" }
func (h ContentLengthHeader) Value() string  { return strconv.Itoa(int(h)) }
func (h ContentLengthHeader) String() string { return headerString(h) }

// EventHeader is the 'Event' header used by SUBSCRIBE/NOTIFY.
type EventHeader string

func (h EventHeader) Name() string   { return "Event" }
func (h EventHeader) Value() string  { return string(h) }
func (h EventHeader) String() string { return headerString(h) }

// SubscriptionStateHeader is the 'Subscription-State' header.
type SubscriptionStateHeader struct {
	State  string // "active", "pending", "terminated"
	Params Params
}

func (h *SubscriptionStateHeader) Name() string { return "Subscription-State" }

func (h *SubscriptionStateHeader) Value() string {
	var b strings.Builder
	b.WriteString(h.State)
	if len(h.Params) > 0 {
		b.WriteByte(';')
		b.WriteString(h.Params.String())
	}
	return b.String()
}

func (h *SubscriptionStateHeader) String() string { return headerString(h) }
