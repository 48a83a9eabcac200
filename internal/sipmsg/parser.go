package sipmsg

import (
	"errors"
	"strconv"
	"strings"
)

// ErrParse is returned for any malformed message. A parse error always
// means "log and drop" — callers never retry or partially process.
var ErrParse = errors.New("sipmsg: parse error")

// ParseMessage parses a full SIP request or response out of data. It does
// not handle partial/streamed input; the TCP server is responsible for
// collecting one message's worth of bytes first.
func ParseMessage(data []byte) (Message, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil, ErrParse
	}

	startLine := lines[0]
	rest := lines[1:]

	if strings.HasPrefix(startLine, "SIP/2.0") {
		return parseResponseLines(startLine, rest)
	}
	return parseRequestLines(startLine, rest)
}

func parseRequestLines(startLine string, rest []string) (Message, error) {
	parts := strings.SplitN(startLine, " ", 3)
	if len(parts) != 3 {
		return nil, ErrParse
	}
	method, requestURIStr := parts[0], parts[1]
	uri, err := ParseUri(requestURIStr)
	if err != nil {
		return nil, err
	}

	req := NewRequest(method, uri)
	if err := parseHeadersInto(&req.headerList, rest); err != nil {
		return nil, err
	}
	return req, nil
}

func parseResponseLines(startLine string, rest []string) (Message, error) {
	parts := strings.SplitN(startLine, " ", 3)
	if len(parts) < 2 {
		return nil, ErrParse
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, ErrParse
	}
	reason := ""
	if len(parts) == 3 {
		reason = parts[2]
	}

	res := NewResponse(code, reason)
	if err := parseHeadersInto(&res.headerList, rest); err != nil {
		return nil, err
	}
	return res, nil
}

func parseHeadersInto(hl *headerList, lines []string) error {
	for _, line := range lines {
		if line == "" {
			// blank line terminates the header block; body (if any) is
			// ignored — the message plane never inspects SDP bodies.
			break
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return ErrParse
		}
		name := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		h, err := parseHeader(name, value)
		if err != nil {
			return err
		}
		hl.AppendHeader(h)
	}
	return nil
}

func parseHeader(name, value string) (Header, error) {
	switch canonicalHeaderName(name) {
	case "Via":
		return parseVia(value)
	case "From":
		return parseNamedAddr(value, func(n namedAddrHeader) Header { return &FromHeader{namedAddrHeader: n} })
	case "To":
		return parseNamedAddr(value, func(n namedAddrHeader) Header { return &ToHeader{namedAddrHeader: n} })
	case "Contact":
		return parseNamedAddr(value, func(n namedAddrHeader) Header { return &ContactHeader{namedAddrHeader: n} })
	case "Call-ID":
		return CallIDHeader(value), nil
	case "CSeq":
		return parseCSeq(value)
	case "Expires":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, ErrParse
		}
		return ExpiresHeader(n), nil
	case "Content-Length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, ErrParse
		}
		return ContentLengthHeader(n), nil
	case "Event":
		return EventHeader(value), nil
	case "Subscription-State":
		return parseSubscriptionState(value)
	default:
		return &GenericHeader{HeaderName: name, Contents: value}, nil
	}
}

// canonicalHeaderName maps compact forms (RFC 3261 §20) and case variants to
// the canonical header name this parser branches on.
func canonicalHeaderName(name string) string {
	switch strings.ToLower(name) {
	case "via", "v":
		return "Via"
	case "from", "f":
		return "From"
	case "to", "t":
		return "To"
	case "contact", "m":
		return "Contact"
	case "call-id", "i":
		return "Call-ID"
	case "cseq":
		return "CSeq"
	case "expires":
		return "Expires"
	case "content-length", "l":
		return "Content-Length"
	case "event", "o":
		return "Event"
	case "subscription-state":
		return "Subscription-State"
	default:
		return name
	}
}

func parseVia(value string) (Header, error) {
	// "SIP/2.0/UDP host:port;branch=...;..."
	spaceParts := strings.SplitN(value, " ", 2)
	if len(spaceParts) != 2 {
		return nil, ErrParse
	}
	protoParts := strings.Split(spaceParts[0], "/")
	if len(protoParts) != 3 {
		return nil, ErrParse
	}
	transport := protoParts[2]

	hostPart := spaceParts[1]
	host := hostPart
	port := 0
	params := NewParams()
	if semi := strings.IndexByte(hostPart, ';'); semi >= 0 {
		host = hostPart[:semi]
		p, err := parseParamString(hostPart[semi+1:])
		if err != nil {
			return nil, err
		}
		params = p
	}
	if colon := strings.LastIndexByte(host, ':'); colon >= 0 {
		if p, err := strconv.Atoi(host[colon+1:]); err == nil {
			port = p
			host = host[:colon]
		}
	}

	return &ViaHeader{Transport: transport, Host: host, Port: port, Params: params}, nil
}

func parseNamedAddr(value string, build func(namedAddrHeader) Header) (Header, error) {
	n := namedAddrHeader{}
	rest := strings.TrimSpace(value)

	if strings.HasPrefix(rest, "\"") {
		end := strings.Index(rest[1:], "\"")
		if end < 0 {
			return nil, ErrParse
		}
		n.DisplayName = rest[1 : end+1]
		rest = strings.TrimSpace(rest[end+2:])
	}

	open := strings.IndexByte(rest, '<')
	close := strings.IndexByte(rest, '>')
	var uriStr, tail string
	if open >= 0 && close > open {
		uriStr = rest[open+1 : close]
		tail = rest[close+1:]
	} else {
		// bare URI with no angle brackets, e.g. "To: sip:alice@server"
		semi := strings.IndexByte(rest, ';')
		if semi >= 0 {
			uriStr = rest[:semi]
			tail = rest[semi:]
		} else {
			uriStr = rest
		}
	}

	uri, err := ParseUri(strings.TrimSpace(uriStr))
	if err != nil {
		return nil, err
	}
	n.Address = uri

	tail = strings.TrimPrefix(strings.TrimSpace(tail), ";")
	params, err := parseParamString(tail)
	if err != nil {
		return nil, err
	}
	n.Params = params

	return build(n), nil
}

func parseCSeq(value string) (Header, error) {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return nil, ErrParse
	}
	seq, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil, ErrParse
	}
	return &CSeqHeader{Seq: uint32(seq), Method: parts[1]}, nil
}

func parseSubscriptionState(value string) (Header, error) {
	semi := strings.IndexByte(value, ';')
	state := value
	params := NewParams()
	if semi >= 0 {
		state = value[:semi]
		p, err := parseParamString(value[semi+1:])
		if err != nil {
			return nil, err
		}
		params = p
	}
	return &SubscriptionStateHeader{State: strings.TrimSpace(state), Params: params}, nil
}
