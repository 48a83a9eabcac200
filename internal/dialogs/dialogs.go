// Package dialogs implements the table of linked dialog pairs the B2BUA
// uses to splice two call legs into independent dialogs.
//
// Dialogs and their partners are linked by integer ids, not pointers: a
// dialog entry references its partner by id without ownership ambiguity,
// and an id stays valid across the transition from incomplete to complete.
package dialogs

import "sync"

// Dialog is a fully established dialog as seen on one leg:
// (call_id, server_tag, client_tag). server_tag is the tag this server
// chose and placed in the leg's To on incoming requests (equivalently From
// on outgoing responses); client_tag is the tag the remote peer chose.
type Dialog struct {
	CallID    string
	ServerTag string
	ClientTag string
}

// IncompleteDialog is an outgoing leg awaiting the remote To-tag, which
// arrives on the first response carrying a tag.
type IncompleteDialog struct {
	CallID    string
	ServerTag string

	id       int
	linkedID int
}

type completeKey struct{ callID, serverTag, clientTag string }
type incompleteKey struct{ callID, serverTag string }

type completeEntry struct {
	dialog   Dialog
	linkedID int
}

type incompleteEntry struct {
	dialog   IncompleteDialog
	linkedID int
}

// Table is the set of linked dialog pairs. All operations are mutually
// exclusive: the table is shared across every Client, but critical
// sections are O(1) map operations with no I/O.
type Table struct {
	mu     sync.Mutex
	nextID int

	complete   map[int]completeEntry
	incomplete map[int]incompleteEntry

	completeByKey   map[completeKey]int
	incompleteByKey map[incompleteKey]int
}

// New returns an empty dialogs table.
func New() *Table {
	return &Table{
		complete:        make(map[int]completeEntry),
		incomplete:      make(map[int]incompleteEntry),
		completeByKey:   make(map[completeKey]int),
		incompleteByKey: make(map[incompleteKey]int),
	}
}

// Add allocates two fresh ids and stores complete, linked to incomplete.
func (t *Table) Add(complete Dialog, incomplete IncompleteDialog) {
	t.mu.Lock()
	defer t.mu.Unlock()

	completeID := t.nextID
	t.nextID++
	incompleteID := t.nextID
	t.nextID++

	t.complete[completeID] = completeEntry{dialog: complete, linkedID: incompleteID}
	t.completeByKey[completeKey{complete.CallID, complete.ServerTag, complete.ClientTag}] = completeID

	t.incomplete[incompleteID] = incompleteEntry{dialog: incomplete, linkedID: completeID}
	t.incompleteByKey[incompleteKey{incomplete.CallID, incomplete.ServerTag}] = incompleteID
}

// Linked finds the complete entry matching (callID, serverTag, clientTag)
// and returns its partner — the entry on the *other* side of the linkage —
// if that partner is itself complete. A partner that is still incomplete
// (the far leg hasn't learned its remote tag yet) is reported as not found.
// On a not-found, the request-side caller forwards the request unchanged and
// the response-side caller drops the response.
func (t *Table) Linked(callID, serverTag, clientTag string) (Dialog, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.completeByKey[completeKey{callID, serverTag, clientTag}]
	if !ok {
		return Dialog{}, false
	}
	entry := t.complete[id]

	partner, ok := t.complete[entry.linkedID]
	if !ok {
		return Dialog{}, false
	}
	return partner.dialog, true
}

// TakeIncomplete removes and returns the incomplete entry matching
// (callID, serverTag), if any.
func (t *Table) TakeIncomplete(callID, serverTag string) (IncompleteDialog, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := incompleteKey{callID, serverTag}
	id, ok := t.incompleteByKey[key]
	if !ok {
		return IncompleteDialog{}, false
	}
	entry := t.incomplete[id]

	delete(t.incomplete, id)
	delete(t.incompleteByKey, key)

	entry.dialog.id = id
	entry.dialog.linkedID = entry.linkedID
	return entry.dialog, true
}

// Complete inserts a new complete entry reusing incomplete's id and
// linkage, now that clientTag has arrived. This is the only place an id
// moves from the incomplete map to the complete map; the id itself, and
// the partner's reference to it, never change.
func (t *Table) Complete(incomplete IncompleteDialog, clientTag string) Dialog {
	t.mu.Lock()
	defer t.mu.Unlock()

	dialog := Dialog{CallID: incomplete.CallID, ServerTag: incomplete.ServerTag, ClientTag: clientTag}
	t.complete[incomplete.id] = completeEntry{dialog: dialog, linkedID: incomplete.linkedID}
	t.completeByKey[completeKey{dialog.CallID, dialog.ServerTag, dialog.ClientTag}] = incomplete.id

	return dialog
}
