package sipmsg

import "testing"

func TestParseRequestRoundTrip(t *testing.T) {
	raw := "REGISTER sip:server SIP/2.0\r\n" +
		"Via: SIP/2.0/UDP 127.0.0.1:40001;branch=z9hG4bK-1\r\n" +
		"From: <sip:alice@127.0.0.1:40001>;tag=tA\r\n" +
		"To: <sip:alice@server>\r\n" +
		"Call-ID: c1\r\n" +
		"CSeq: 1 REGISTER\r\n" +
		"Contact: <sip:alice@127.0.0.1:40001>\r\n" +
		"Expires: 3600\r\n" +
		"Content-Length: 0\r\n" +
		"\r\n"

	msg, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	req, ok := msg.(*Request)
	if !ok {
		t.Fatalf("expected *Request, got %T", msg)
	}
	if req.Method != "REGISTER" {
		t.Errorf("Method = %q", req.Method)
	}

	user, ok := ToUsername(req)
	if !ok || user != "alice" {
		t.Errorf("ToUsername = %q, %v", user, ok)
	}

	branch, ok := ViaBranch(req)
	if !ok || branch != "z9hG4bK-1" {
		t.Errorf("ViaBranch = %q, %v", branch, ok)
	}

	tag, ok := FromTag(req)
	if !ok || tag != "tA" {
		t.Errorf("FromTag = %q, %v", tag, ok)
	}

	exp, ok := Expires(req)
	if !ok || exp != 3600 {
		t.Errorf("Expires = %d, %v", exp, ok)
	}

	callID, ok := CallID(req)
	if !ok || callID != "c1" {
		t.Errorf("CallID = %q, %v", callID, ok)
	}
}

func TestExpiresFallsBackToContactParam(t *testing.T) {
	raw := "REGISTER sip:server SIP/2.0\r\n" +
		"Via: SIP/2.0/UDP 127.0.0.1:40001;branch=z9hG4bK-2\r\n" +
		"From: <sip:alice@127.0.0.1:40001>;tag=tA\r\n" +
		"To: <sip:alice@server>\r\n" +
		"Call-ID: c2\r\n" +
		"CSeq: 1 REGISTER\r\n" +
		"Contact: <sip:alice@127.0.0.1:40001>;expires=120\r\n" +
		"\r\n"

	msg, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}

	exp, ok := Expires(msg)
	if !ok || exp != 120 {
		t.Fatalf("Expires = %d, %v, want 120, true", exp, ok)
	}
}

func TestParseResponse(t *testing.T) {
	raw := "SIP/2.0 200 OK\r\n" +
		"Via: SIP/2.0/UDP 127.0.0.1:40002;branch=z9hG4bK-3\r\n" +
		"From: <sip:bob@server>;tag=tB\r\n" +
		"To: <sip:alice@server>;tag=tA\r\n" +
		"Call-ID: c3\r\n" +
		"CSeq: 1 INVITE\r\n" +
		"Content-Length: 0\r\n" +
		"\r\n"

	msg, err := ParseMessage([]byte(raw))
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	res, ok := msg.(*Response)
	if !ok {
		t.Fatalf("expected *Response, got %T", msg)
	}
	if res.StatusCode != 200 {
		t.Errorf("StatusCode = %d", res.StatusCode)
	}
	method, ok := CSeqMethod(res)
	if !ok || method != "INVITE" {
		t.Errorf("CSeqMethod = %q, %v", method, ok)
	}
}

func TestNewResponseFromRequestCopiesHeadersAndAddsTag(t *testing.T) {
	req := NewRequest("INVITE", Uri{Host: "server"})
	req.AppendHeader(&ViaHeader{Transport: "UDP", Host: "127.0.0.1", Port: 40001, Params: NewParams().Add("branch", "z9hG4bK-4")})
	req.AppendHeader(&FromHeader{namedAddrHeader{Address: Uri{User: "alice", Host: "server"}, Params: NewParams().Add("tag", "tA")}})
	req.AppendHeader(&ToHeader{namedAddrHeader{Address: Uri{User: "bob", Host: "server"}}})
	req.AppendHeader(CallIDHeader("c4"))
	req.AppendHeader(&CSeqHeader{Seq: 1, Method: "INVITE"})
	req.AppendHeader(&ContactHeader{namedAddrHeader{Address: Uri{User: "alice", Host: "127.0.0.1", Port: 40001}}})

	serverContact := &ContactHeader{namedAddrHeader{Address: Uri{Host: "server"}}}
	res := NewResponseFromRequest(req, 200, ReasonOK, "srv-tag", serverContact)

	if res.StatusCode != 200 {
		t.Fatalf("StatusCode = %d", res.StatusCode)
	}
	if got := res.GetHeaders("Contact"); len(got) != 1 {
		t.Fatalf("want exactly one Contact, got %d", len(got))
	}
	cl, ok := res.GetHeader("Content-Length").(ContentLengthHeader)
	if !ok || int(cl) != 0 {
		t.Fatalf("want Content-Length: 0, got %v", res.GetHeader("Content-Length"))
	}
	tag, ok := ToTag(res)
	if !ok || tag != "srv-tag" {
		t.Fatalf("ToTag = %q, %v, want srv-tag", tag, ok)
	}
	if via, ok := res.Via(); !ok || via.Host != "127.0.0.1" {
		t.Fatalf("Via not preserved verbatim: %+v", via)
	}
	if callID, ok := CallID(res); !ok || callID != "c4" {
		t.Fatalf("Call-ID not copied: %q", callID)
	}
}

func TestParseMalformedReturnsError(t *testing.T) {
	if _, err := ParseMessage([]byte("not a sip message")); err == nil {
		t.Fatal("expected parse error")
	}
}
