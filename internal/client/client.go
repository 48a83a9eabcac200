// Package client implements the per-peer protocol logic: registrar rules,
// proxy routing, and the B2BUA dialog-translation state machine. A Client
// owns no transport; it only reads the shared registrations/dialogs tables
// and emits clientevent.Event values through an injected sink, which is
// what makes it testable with a fake sink independent of UDP/TCP.
package client

import (
	"github.com/rs/zerolog/log"

	"github.com/sebas/sipline/internal/clientevent"
	"github.com/sebas/sipline/internal/dialogs"
	"github.com/sebas/sipline/internal/idgen"
	"github.com/sebas/sipline/internal/peeraddr"
	"github.com/sebas/sipline/internal/registrations"
	"github.com/sebas/sipline/internal/sipmsg"
)

// Config holds settings shared by every Client a Factory constructs.
type Config struct {
	// Domain is the local SIP schema/domain used when this server
	// synthesizes headers (Via, Contact, NOTIFY request-URI, ...).
	Domain string
	// BackToBack selects B2BUA dialog-splicing behavior over plain proxy
	// forwarding.
	BackToBack bool
}

// Factory constructs Clients that share one set of backing tables. It is a
// boundary whose transport specialization is irrelevant to the factory
// itself.
type Factory struct {
	cfg      Config
	regs     *registrations.Table
	dialogs  *dialogs.Table
	branches *idgen.BranchGenerator
}

// NewFactory builds a Factory sharing the given tables across every Client
// it constructs.
func NewFactory(cfg Config, regs *registrations.Table, dlgs *dialogs.Table, branches *idgen.BranchGenerator) *Factory {
	return &Factory{cfg: cfg, regs: regs, dialogs: dlgs, branches: branches}
}

// New creates a Client owning addr, emitting ClientEvents through sink.
func (f *Factory) New(addr peeraddr.PeerAddress, sink clientevent.Sink) *Client {
	return &Client{
		addr:     addr,
		cfg:      f.cfg,
		regs:     f.regs,
		dialogs:  f.dialogs,
		branches: f.branches,
		sink:     sink,
	}
}

// Client is per-peer state. It is never shared across goroutines — the
// worker that owns it is its only caller.
type Client struct {
	addr     peeraddr.PeerAddress
	cfg      Config
	regs     *registrations.Table
	dialogs  *dialogs.Table
	branches *idgen.BranchGenerator
	sink     clientevent.Sink
}

func (c *Client) send(msg sipmsg.Message) {
	c.sink.Emit(clientevent.Send{Msg: msg})
}

func (c *Client) route(addr peeraddr.PeerAddress, msg sipmsg.Message) {
	c.sink.Emit(clientevent.Route{Addr: addr, Msg: msg})
}

func (c *Client) serverContact() *sipmsg.ContactHeader {
	return sipmsg.NewContactHeader("", sipmsg.Uri{Host: c.cfg.Domain}, nil)
}

func (c *Client) reject(req *sipmsg.Request, status int, reason string) {
	c.send(sipmsg.NewResponseFromRequest(req, status, reason, idgen.Tag(), c.serverContact()))
}

// OnMsg handles a message that arrived directly from this Client's own
// peer.
func (c *Client) OnMsg(msg sipmsg.Message) {
	if msg.IsRequest() {
		c.onRequest(msg.(*sipmsg.Request))
		return
	}
	c.onResponse(msg.(*sipmsg.Response))
}

func (c *Client) onRequest(req *sipmsg.Request) {
	switch req.Method {
	case "REGISTER":
		c.onRegister(req)
	case "SUBSCRIBE":
		c.onSubscribe(req)
	case "INVITE", "BYE", "ACK", "CANCEL", "REFER", "NOTIFY":
		c.routeRequest(req)
	default:
		c.send(sipmsg.NewResponseFromRequest(req, 200, sipmsg.ReasonOK, idgen.Tag(), c.serverContact()))
	}
}

func (c *Client) onResponse(res *sipmsg.Response) {
	method, ok := sipmsg.CSeqMethod(res)
	if !ok {
		log.Debug().Str("component", "client").Str("peer", c.addr.String()).
			Msg("response missing CSeq method, dropping")
		return
	}
	switch method {
	case "INVITE", "BYE", "CANCEL", "REFER", "NOTIFY":
		c.routeResponse(res)
	default:
		// Other response methods carry nothing this server needs to act on.
	}
}

// onRegister processes a REGISTER request: validates the AOR and expiry,
// replies, then updates the registrations table.
func (c *Client) onRegister(req *sipmsg.Request) {
	username, ok := sipmsg.ToUsername(req)
	if !ok {
		c.reject(req, 400, sipmsg.ReasonBadRequest)
		return
	}
	expires, ok := sipmsg.Expires(req)
	if !ok {
		c.reject(req, 400, sipmsg.ReasonBadRequest)
		return
	}

	res := sipmsg.NewResponseFromRequest(req, 200, sipmsg.ReasonOK, idgen.Tag(), c.serverContact())
	res.ReplaceHeader(sipmsg.ExpiresHeader(expires))
	c.send(res)

	if expires > 0 {
		c.regs.Register(username, c.addr)
	} else {
		c.regs.Unregister(username)
	}
}

// onSubscribe replies to a SUBSCRIBE and immediately synthesizes a NOTIFY
// back to the subscriber with the current (always-active) subscription
// state.
func (c *Client) onSubscribe(req *sipmsg.Request) {
	c.send(sipmsg.NewResponseFromRequest(req, 200, sipmsg.ReasonOK, idgen.Tag(), c.serverContact()))

	notify, ok := c.buildNotify(req)
	if !ok {
		return
	}
	c.send(notify)
}

func (c *Client) buildNotify(req *sipmsg.Request) (*sipmsg.Request, bool) {
	to, ok := req.To()
	if !ok {
		log.Warn().Str("component", "client").Msg("SUBSCRIBE missing To, abandoning NOTIFY")
		return nil, false
	}
	from, ok := req.From()
	if !ok {
		log.Warn().Str("component", "client").Msg("SUBSCRIBE missing From, abandoning NOTIFY")
		return nil, false
	}
	eventHdr := req.GetHeader("Event")
	if eventHdr == nil {
		log.Warn().Str("component", "client").Msg("SUBSCRIBE missing Event, abandoning NOTIFY")
		return nil, false
	}
	callID, ok := req.CallID()
	if !ok {
		log.Warn().Str("component", "client").Msg("SUBSCRIBE missing Call-ID, abandoning NOTIFY")
		return nil, false
	}
	if to.Address.User == "" {
		log.Warn().Str("component", "client").Msg("SUBSCRIBE To has no username, abandoning NOTIFY")
		return nil, false
	}

	notify := sipmsg.NewRequest("NOTIFY", sipmsg.Uri{Host: c.cfg.Domain, User: to.Address.User})

	notify.AppendHeader(&sipmsg.ViaHeader{
		Transport: string(c.addr.Transport),
		Host:      c.cfg.Domain,
		Params:    sipmsg.NewParams().Add("branch", c.branches.Next()),
	})

	fromParams := to.Params.Clone()
	if _, hasTag := to.Tag(); !hasTag {
		if fromParams == nil {
			fromParams = sipmsg.NewParams()
		}
		fromParams = fromParams.Add("tag", idgen.Tag())
	}
	notify.AppendHeader(sipmsg.NewFromHeader(to.DisplayName, to.Address, fromParams))
	notify.AppendHeader(sipmsg.NewToHeader(from.DisplayName, from.Address, from.Params.Clone()))

	notify.AppendHeader(sipmsg.EventHeader(eventHdr.Value()))
	notify.AppendHeader(&sipmsg.GenericHeader{HeaderName: "Max-Forwards", Contents: "70"})
	notify.AppendHeader(callID)
	notify.AppendHeader(&sipmsg.CSeqHeader{Seq: 50, Method: "NOTIFY"})
	notify.AppendHeader(c.serverContact())
	notify.AppendHeader(&sipmsg.SubscriptionStateHeader{
		State:  "active",
		Params: sipmsg.NewParams().Add("expires", "86400"),
	})
	notify.AppendHeader(sipmsg.ContentLengthHeader(0))

	return notify, true
}

// routeRequest resolves the callee from the To header, looks it up in the
// registrations table, and hands the request off to the destination Client
// — translating dialog identifiers first when running as a B2BUA.
func (c *Client) routeRequest(req *sipmsg.Request) {
	via, ok := req.Via()
	if !ok {
		c.reject(req, 400, sipmsg.ReasonBadRequest)
		return
	}
	if _, ok := via.Branch(); !ok {
		c.reject(req, 400, sipmsg.ReasonBadRequest)
		return
	}

	username, ok := sipmsg.ToUsername(req)
	if !ok {
		c.reject(req, 400, sipmsg.ReasonBadRequest)
		return
	}
	calleeAddr, ok := c.regs.AddressOf(username)
	if !ok {
		c.reject(req, 404, sipmsg.ReasonNotFound)
		return
	}

	if !c.cfg.BackToBack {
		c.route(calleeAddr, req)
		return
	}

	if !c.translateRequestForB2B(req) {
		c.reject(req, 400, sipmsg.ReasonBadRequest)
		return
	}
	c.route(calleeAddr, req)
}

// routeResponse resolves the caller from the From header and hands the
// response off to its Client. An unregistered caller is dropped silently.
func (c *Client) routeResponse(res *sipmsg.Response) {
	username, ok := sipmsg.FromUsername(res)
	if !ok {
		log.Debug().Str("component", "client").Msg("response has no From username, dropping")
		return
	}
	callerAddr, ok := c.regs.AddressOf(username)
	if !ok {
		log.Debug().Str("component", "client").Str("user", username).
			Msg("response route miss, caller not registered")
		return
	}
	c.route(callerAddr, res)
}

// translateRequestForB2B rewrites a request's dialog identifiers for the
// outgoing leg of a B2BUA-spliced call: an existing To-tag means a
// mid-dialog request whose identifiers translate to the linked dialog's;
// no To-tag means a dialog-creating request that mints a fresh outgoing
// Call-ID and From-tag and records the new dialog pair. Returns false only
// on a translation failure that should be reported to the sender as a 400;
// a lookup miss on a mid-dialog request is not a failure, it forwards the
// request unchanged.
func (c *Client) translateRequestForB2B(req *sipmsg.Request) bool {
	to, ok := req.To()
	if !ok {
		return false
	}
	from, ok := req.From()
	if !ok {
		return false
	}
	callID, ok := req.CallID()
	if !ok {
		return false
	}

	if serverTag, hasServerTag := to.Tag(); hasServerTag {
		// Case A: mid-dialog request.
		clientTag, _ := from.Tag()
		partner, found := c.dialogs.Linked(string(callID), serverTag, clientTag)
		if !found {
			return true
		}
		sipmsg.ReplaceCallID(req, partner.CallID)
		sipmsg.SetFromTag(req, partner.ServerTag)
		sipmsg.SetToTag(req, partner.ClientTag)
		return true
	}

	// Case B: dialog-creating request.
	clientTag, hasClientTag := from.Tag()
	if !hasClientTag || callID == "" {
		return false
	}

	newServerTag := idgen.Tag()
	newCallID := idgen.CallID()
	incomingServerTag := idgen.Tag()

	c.dialogs.Add(
		dialogs.Dialog{CallID: string(callID), ServerTag: incomingServerTag, ClientTag: clientTag},
		dialogs.IncompleteDialog{CallID: newCallID, ServerTag: newServerTag},
	)

	sipmsg.SetFromTag(req, newServerTag)
	sipmsg.ReplaceCallID(req, newCallID)
	return true
}

// OnRoutedMsg handles a message the router delivered from another Client.
func (c *Client) OnRoutedMsg(msg sipmsg.Message) {
	if msg.IsRequest() {
		c.onRoutedRequest(msg.(*sipmsg.Request))
		return
	}
	c.onRoutedResponse(msg.(*sipmsg.Response))
}

func (c *Client) onRoutedRequest(req *sipmsg.Request) {
	branch, ok := sipmsg.ViaBranch(req)
	if !ok {
		log.Error().Str("component", "client").Msg("routed request has no via branch, dropping")
		return
	}
	sipmsg.ReplaceVia(req, &sipmsg.ViaHeader{
		Transport: string(c.addr.Transport),
		Host:      c.cfg.Domain,
		Params:    sipmsg.NewParams().Add("branch", branch),
	})

	if _, hasContact := req.Contact(); hasContact {
		sipmsg.ReplaceContact(req, c.serverContact())
	} else if req.Method == "INVITE" {
		log.Error().Str("component", "client").Msg("invariant violation: routed INVITE has no Contact")
		return
	}

	c.send(req)
}

func (c *Client) onRoutedResponse(res *sipmsg.Response) {
	if c.cfg.BackToBack {
		if !c.translateResponseForB2B(res) {
			log.Error().Str("component", "client").Msg("dialog translation failed for routed response, dropping")
			return
		}
	}

	cseqMethod, _ := sipmsg.CSeqMethod(res)
	if _, hasContact := res.Contact(); hasContact {
		sipmsg.ReplaceContact(res, c.serverContact())
	} else if res.StatusCode >= 200 && res.StatusCode < 300 && cseqMethod == "INVITE" {
		log.Error().Str("component", "client").Msg("invariant violation: routed INVITE 2xx has no Contact")
		return
	}

	c.send(res)
}

// translateResponseForB2B rewrites a response's dialog identifiers back to
// the originating leg's: completes the linked incomplete dialog with the
// newly learned client tag if this is the first response, then looks up
// the partner dialog. The response's From carries the partner's client_tag
// and To the partner's server_tag — the mirror image of the request-side
// mapping, reconstructing the caller's own original tags.
func (c *Client) translateResponseForB2B(res *sipmsg.Response) bool {
	from, ok := res.From()
	if !ok {
		return false
	}
	to, ok := res.To()
	if !ok {
		return false
	}
	serverTag, ok := from.Tag()
	if !ok {
		return false
	}
	clientTag, ok := to.Tag()
	if !ok {
		return false
	}
	callID, ok := res.CallID()
	if !ok {
		return false
	}

	if incomplete, found := c.dialogs.TakeIncomplete(string(callID), serverTag); found {
		c.dialogs.Complete(incomplete, clientTag)
	}

	partner, found := c.dialogs.Linked(string(callID), serverTag, clientTag)
	if !found {
		return false
	}

	sipmsg.ReplaceCallID(res, partner.CallID)
	sipmsg.SetFromTag(res, partner.ClientTag)
	sipmsg.SetToTag(res, partner.ServerTag)
	return true
}
