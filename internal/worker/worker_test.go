package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/sebas/sipline/internal/sipmsg"
)

type recordingClient struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingClient) OnMsg(msg sipmsg.Message) {
	r.mu.Lock()
	r.calls = append(r.calls, "msg:"+msg.(*sipmsg.Request).Method)
	r.mu.Unlock()
}

func (r *recordingClient) OnRoutedMsg(msg sipmsg.Message) {
	r.mu.Lock()
	r.calls = append(r.calls, "routed:"+msg.(*sipmsg.Request).Method)
	r.mu.Unlock()
}

func (r *recordingClient) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func req(method string) *sipmsg.Request {
	return sipmsg.NewRequest(method, sipmsg.Uri{Host: "server.example"})
}

func TestWorkerPreservesFIFOOrder(t *testing.T) {
	c := &recordingClient{}
	w := Start(c)

	w.Received(req("REGISTER"))
	w.Routed(req("INVITE"))
	w.Received(req("BYE"))
	w.Close()

	deadline := time.After(time.Second)
	for {
		if got := c.snapshot(); len(got) == 3 {
			want := []string{"msg:REGISTER", "routed:INVITE", "msg:BYE"}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("call %d = %q, want %q (full: %v)", i, got[i], want[i], got)
				}
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("worker did not process all messages in time, got %v", c.snapshot())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestWorkerDropsMessagesAfterClose(t *testing.T) {
	c := &recordingClient{}
	w := Start(c)
	w.Close()
	time.Sleep(10 * time.Millisecond)

	w.Received(req("REGISTER"))
	time.Sleep(10 * time.Millisecond)

	if got := c.snapshot(); len(got) != 0 {
		t.Fatalf("expected no calls after Close, got %v", got)
	}
}
