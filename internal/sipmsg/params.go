package sipmsg

import "strings"

// HeaderKV is a single key/value pair carried by a header's parameter list,
// e.g. the ";branch=..." suffix of a Via or the ";tag=..." suffix of a From/To.
type HeaderKV struct {
	K string
	V string
}

// Params is an ordered set of header parameters. Order matters for
// byte-identical re-serialization, which is why this isn't a map.
type Params []HeaderKV

// NewParams returns an empty parameter list with a small preallocated backing
// array; header params rarely exceed a couple of entries.
func NewParams() Params {
	return make(Params, 0, 4)
}

// Get returns the value for key and whether it was present.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.K == key {
			return kv.V, true
		}
	}
	return "", false
}

// Has reports whether key is present, regardless of value.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Add appends a key/value pair, or overwrites the value of an existing key.
func (p Params) Add(key, value string) Params {
	for i, kv := range p {
		if kv.K == key {
			p[i].V = value
			return p
		}
	}
	return append(p, HeaderKV{K: key, V: value})
}

// Clone returns an independent copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

func (p Params) String() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(kv.K)
		if kv.V != "" {
			b.WriteByte('=')
			b.WriteString(kv.V)
		}
	}
	return b.String()
}
