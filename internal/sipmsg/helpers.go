package sipmsg

// This file holds pure, stateless accessors and mutators over the Message
// boundary. None of it holds state; all state lives in the tables the
// client package owns.

// Method returns the message's method, and whether one could be determined.
// For a request this is the request line's method. A response has no
// method on its status line; callers needing a response's method should
// read it from CSeq via CSeqMethod instead.
func Method(msg Message) (string, bool) {
	if req, ok := msg.(*Request); ok {
		return req.Method, true
	}
	return "", false
}

// CSeqMethod returns the method named in the message's CSeq header, which is
// how a response's method is determined for dispatch.
func CSeqMethod(msg Message) (string, bool) {
	cseq, ok := msg.CSeq()
	if !ok {
		return "", false
	}
	return cseq.Method, true
}

// StatusCode returns a response's status code, and whether msg is a response.
func StatusCode(msg Message) (int, bool) {
	if res, ok := msg.(*Response); ok {
		return res.StatusCode, true
	}
	return 0, false
}

// ToUsername returns the username in the To header's URI.
func ToUsername(msg Message) (string, bool) {
	to, ok := msg.To()
	if !ok || to.Address.User == "" {
		return "", false
	}
	return to.Address.User, true
}

// FromUsername returns the username in the From header's URI.
func FromUsername(msg Message) (string, bool) {
	from, ok := msg.From()
	if !ok || from.Address.User == "" {
		return "", false
	}
	return from.Address.User, true
}

// ToTag returns the To header's tag= parameter.
func ToTag(msg Message) (string, bool) {
	to, ok := msg.To()
	if !ok {
		return "", false
	}
	return to.Tag()
}

// FromTag returns the From header's tag= parameter.
func FromTag(msg Message) (string, bool) {
	from, ok := msg.From()
	if !ok {
		return "", false
	}
	return from.Tag()
}

// CallID returns the Call-ID header's value.
func CallID(msg Message) (string, bool) {
	id, ok := msg.CallID()
	if !ok {
		return "", false
	}
	return string(id), true
}

// ViaBranch returns the branch= parameter of the Via header msg.Via()
// reports. Only one Via is tracked; when a message carries several, that is
// the last one parsed or appended, not the topmost.
func ViaBranch(msg Message) (string, bool) {
	via, ok := msg.Via()
	if !ok {
		return "", false
	}
	return via.Branch()
}

// Expires returns the effective expiration: the dedicated Expires header if
// present, else the Contact header's expires= parameter.
func Expires(msg Message) (int, bool) {
	if h := msg.GetHeader("Expires"); h != nil {
		if e, ok := h.(ExpiresHeader); ok {
			return int(e), true
		}
	}
	if contact, ok := msg.Contact(); ok {
		return contact.ExpiresParam()
	}
	return 0, false
}

// SetFromTag sets (or overwrites) the From header's tag= parameter.
func SetFromTag(msg Message, tag string) {
	from, ok := msg.From()
	if !ok {
		return
	}
	clone := from.Clone()
	if clone.Params == nil {
		clone.Params = NewParams()
	}
	clone.Params = clone.Params.Add("tag", tag)
	msg.ReplaceHeader(clone)
}

// SetToTag sets (or overwrites) the To header's tag= parameter.
func SetToTag(msg Message, tag string) {
	to, ok := msg.To()
	if !ok {
		return
	}
	clone := to.Clone()
	if clone.Params == nil {
		clone.Params = NewParams()
	}
	clone.Params = clone.Params.Add("tag", tag)
	msg.ReplaceHeader(clone)
}

// ReplaceVia replaces the message's Via header wholesale.
func ReplaceVia(msg Message, via *ViaHeader) {
	msg.ReplaceHeader(via)
}

// ReplaceContact replaces the message's Contact header wholesale.
func ReplaceContact(msg Message, contact *ContactHeader) {
	msg.ReplaceHeader(contact)
}

// ReplaceCallID overwrites the Call-ID value in place.
func ReplaceCallID(msg Message, callID string) {
	msg.ReplaceHeader(CallIDHeader(callID))
}
