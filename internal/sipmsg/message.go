package sipmsg

import "strings"

// Message is the parsed form this server consumes: either a Request or a
// Response, carrying method/status-line info and a header list. The shape
// below — an ordered header list with typed fast-path accessors falling
// back to a generic header — mirrors how sipgo's sip.Message/sip.Header
// are built.
type Message interface {
	IsRequest() bool
	Headers() []Header
	GetHeader(name string) Header
	GetHeaders(name string) []Header
	AppendHeader(h Header)
	ReplaceHeader(h Header)
	RemoveHeader(name string)

	Via() (*ViaHeader, bool)
	From() (*FromHeader, bool)
	To() (*ToHeader, bool)
	CallID() (CallIDHeader, bool)
	CSeq() (*CSeqHeader, bool)
	Contact() (*ContactHeader, bool)

	// Bytes renders the message back to wire format.
	Bytes() []byte
	String() string
}

// headerList is the shared header-storage implementation for Request and
// Response: an ordered slice (for byte-stable re-serialization) plus cached
// pointers to the headers this server actually branches on.
type headerList struct {
	order []Header

	via     *ViaHeader
	from    *FromHeader
	to      *ToHeader
	callID  *CallIDHeader
	cseq    *CSeqHeader
	contact *ContactHeader
}

func (hl *headerList) Headers() []Header { return hl.order }

func (hl *headerList) GetHeader(name string) Header {
	nameLower := strings.ToLower(name)
	for _, h := range hl.order {
		if strings.ToLower(h.Name()) == nameLower {
			return h
		}
	}
	return nil
}

func (hl *headerList) GetHeaders(name string) []Header {
	nameLower := strings.ToLower(name)
	var out []Header
	for _, h := range hl.order {
		if strings.ToLower(h.Name()) == nameLower {
			out = append(out, h)
		}
	}
	return out
}

func (hl *headerList) AppendHeader(h Header) {
	hl.order = append(hl.order, h)
	hl.cache(h)
}

func (hl *headerList) cache(h Header) {
	switch v := h.(type) {
	case *ViaHeader:
		hl.via = v
	case *FromHeader:
		hl.from = v
	case *ToHeader:
		hl.to = v
	case CallIDHeader:
		hl.callID = &v
	case *CSeqHeader:
		hl.cseq = v
	case *ContactHeader:
		hl.contact = v
	}
}

// ReplaceHeader replaces the first header with the same name as h, or
// appends it if none exists.
func (hl *headerList) ReplaceHeader(h Header) {
	nameLower := strings.ToLower(h.Name())
	for i, existing := range hl.order {
		if strings.ToLower(existing.Name()) == nameLower {
			hl.order[i] = h
			hl.cache(h)
			return
		}
	}
	hl.AppendHeader(h)
}

// RemoveHeader removes the first header with the given name, if any.
func (hl *headerList) RemoveHeader(name string) {
	nameLower := strings.ToLower(name)
	for i, h := range hl.order {
		if strings.ToLower(h.Name()) == nameLower {
			hl.order = append(hl.order[:i], hl.order[i+1:]...)
			break
		}
	}
	switch nameLower {
	case "via":
		hl.via = nil
	case "from":
		hl.from = nil
	case "to":
		hl.to = nil
	case "call-id":
		hl.callID = nil
	case "cseq":
		hl.cseq = nil
	case "contact":
		hl.contact = nil
	}
}

func (hl *headerList) Via() (*ViaHeader, bool)         { return hl.via, hl.via != nil }
func (hl *headerList) From() (*FromHeader, bool)       { return hl.from, hl.from != nil }
func (hl *headerList) To() (*ToHeader, bool)           { return hl.to, hl.to != nil }
func (hl *headerList) CSeq() (*CSeqHeader, bool)       { return hl.cseq, hl.cseq != nil }
func (hl *headerList) Contact() (*ContactHeader, bool) { return hl.contact, hl.contact != nil }

func (hl *headerList) CallID() (CallIDHeader, bool) {
	if hl.callID == nil {
		return "", false
	}
	return *hl.callID, true
}

func (hl *headerList) writeHeaders(b *strings.Builder) {
	for _, h := range hl.order {
		b.WriteString(h.String())
		b.WriteString("\r\n")
	}
}

func (hl *headerList) cloneOrder() []Header {
	out := make([]Header, len(hl.order))
	copy(out, hl.order)
	return out
}
