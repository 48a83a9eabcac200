package dialogs

import "testing"

func TestAddAndLinkedReturnsPartner(t *testing.T) {
	tbl := New()

	a := Dialog{CallID: "call-1", ServerTag: "srv-a", ClientTag: "cli-a"}
	b := Dialog{CallID: "call-1", ServerTag: "srv-b", ClientTag: "cli-b"}

	tbl.Add(a, IncompleteDialog{CallID: b.CallID, ServerTag: b.ServerTag})
	incomplete, ok := tbl.TakeIncomplete(b.CallID, b.ServerTag)
	if !ok {
		t.Fatal("expected incomplete entry for b")
	}
	got := tbl.Complete(incomplete, b.ClientTag)
	if got != b {
		t.Fatalf("Complete() = %+v, want %+v", got, b)
	}

	partner, ok := tbl.Linked(a.CallID, a.ServerTag, a.ClientTag)
	if !ok {
		t.Fatal("expected a to be linked once b completed")
	}
	if partner != b {
		t.Fatalf("Linked(a) = %+v, want partner %+v (not a itself)", partner, b)
	}

	partner, ok = tbl.Linked(b.CallID, b.ServerTag, b.ClientTag)
	if !ok {
		t.Fatal("expected b to be linked back to a")
	}
	if partner != a {
		t.Fatalf("Linked(b) = %+v, want partner %+v (not b itself)", partner, a)
	}
}

func TestLinkedBeforeCompletionReportsNotFound(t *testing.T) {
	tbl := New()

	a := Dialog{CallID: "call-2", ServerTag: "srv-a", ClientTag: "cli-a"}
	tbl.Add(a, IncompleteDialog{CallID: "call-2", ServerTag: "srv-b"})

	if _, ok := tbl.Linked(a.CallID, a.ServerTag, a.ClientTag); ok {
		t.Fatal("Linked should report not-found while the partner is still incomplete")
	}
}

func TestTakeIncompleteRemovesEntry(t *testing.T) {
	tbl := New()

	a := Dialog{CallID: "call-3", ServerTag: "srv-a", ClientTag: "cli-a"}
	tbl.Add(a, IncompleteDialog{CallID: "call-3", ServerTag: "srv-b"})

	if _, ok := tbl.TakeIncomplete("call-3", "srv-b"); !ok {
		t.Fatal("expected to take the incomplete entry")
	}
	if _, ok := tbl.TakeIncomplete("call-3", "srv-b"); ok {
		t.Fatal("incomplete entry should be gone after being taken once")
	}
}

func TestLinkedUnknownTripleNotFound(t *testing.T) {
	tbl := New()
	if _, ok := tbl.Linked("nope", "nope", "nope"); ok {
		t.Fatal("Linked on an unknown triple should report not-found")
	}
}
