package sipmsg

import (
	"strconv"
	"strings"
)

// Uri is a parsed sip: or sips: URI, e.g. "sip:alice@server.example:5060".
type Uri struct {
	Secure bool
	User   string
	Host   string
	Port   int // 0 if absent
	Params Params
}

func (u Uri) String() string {
	var b strings.Builder
	if u.Secure {
		b.WriteString("sips:")
	} else {
		b.WriteString("sip:")
	}
	if u.User != "" {
		b.WriteString(u.User)
		b.WriteByte('@')
	}
	b.WriteString(u.Host)
	if u.Port != 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.Port))
	}
	if len(u.Params) > 0 {
		b.WriteByte(';')
		b.WriteString(u.Params.String())
	}
	return b.String()
}

// ParseUri parses the body of a SIP URI, e.g. "sip:alice@server.example".
// It does not expect surrounding angle brackets; strip those first.
func ParseUri(s string) (Uri, error) {
	var u Uri
	rest := s
	switch {
	case strings.HasPrefix(rest, "sips:"):
		u.Secure = true
		rest = rest[len("sips:"):]
	case strings.HasPrefix(rest, "sip:"):
		rest = rest[len("sip:"):]
	default:
		return Uri{}, errInvalidUri(s)
	}

	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		params, err := parseParamString(rest[semi+1:])
		if err != nil {
			return Uri{}, err
		}
		u.Params = params
		rest = rest[:semi]
	}

	if at := strings.IndexByte(rest, '@'); at >= 0 {
		u.User = rest[:at]
		rest = rest[at+1:]
	}

	if colon := strings.LastIndexByte(rest, ':'); colon >= 0 {
		host := rest[:colon]
		portStr := rest[colon+1:]
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Uri{}, errInvalidUri(s)
		}
		u.Host = host
		u.Port = port
	} else {
		u.Host = rest
	}

	if u.Host == "" {
		return Uri{}, errInvalidUri(s)
	}

	return u, nil
}

func parseParamString(s string) (Params, error) {
	p := NewParams()
	if s == "" {
		return p, nil
	}
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		if eq := strings.IndexByte(part, '='); eq >= 0 {
			p = p.Add(part[:eq], part[eq+1:])
		} else {
			p = p.Add(part, "")
		}
	}
	return p, nil
}

type uriError struct{ s string }

func (e *uriError) Error() string { return "sipmsg: invalid uri: " + e.s }

func errInvalidUri(s string) error { return &uriError{s: s} }
