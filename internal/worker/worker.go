// Package worker implements a single-threaded mailbox that owns one Client
// and serializes every call into it, guaranteeing at most one Client method
// runs at any instant and that messages from a single source observe FIFO
// order.
//
// The queue is unbounded and Received/Routed never block the caller: Go has
// no native unbounded channel, so this wraps a plain slice behind a mutex
// and sync.Cond rather than a fixed-capacity chan, which would impose
// backpressure this server intentionally does not have.
package worker

import (
	"sync"

	"github.com/sebas/sipline/internal/sipmsg"
)

// Client is the subset of client.Client a Worker drives. Defined here
// rather than imported so worker has no compile-time dependency on the
// client package's construction details — only its two entry points.
type Client interface {
	OnMsg(msg sipmsg.Message)
	OnRoutedMsg(msg sipmsg.Message)
}

type mailItem struct {
	routed bool
	msg    sipmsg.Message
}

// Worker is the mailbox goroutine wrapping one Client.
type Worker struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []mailItem
	closed bool
}

// Start spawns the worker goroutine and returns a handle to it. The
// goroutine runs until Close is called and the queue drains.
func Start(c Client) *Worker {
	w := &Worker{}
	w.cond = sync.NewCond(&w.mu)
	go w.run(c)
	return w
}

func (w *Worker) run(c Client) {
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			w.mu.Unlock()
			return
		}
		item := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if item.routed {
			c.OnRoutedMsg(item.msg)
		} else {
			c.OnMsg(item.msg)
		}
	}
}

func (w *Worker) enqueue(item mailItem) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, item)
	w.mu.Unlock()
	w.cond.Signal()
}

// Received enqueues msg as having arrived directly from this worker's peer.
func (w *Worker) Received(msg sipmsg.Message) {
	w.enqueue(mailItem{routed: false, msg: msg})
}

// Routed enqueues msg as having been delivered by the router from another
// peer's Client.
func (w *Worker) Routed(msg sipmsg.Message) {
	w.enqueue(mailItem{routed: true, msg: msg})
}

// Close signals the worker to terminate once its queue drains. Sends after
// Close are silently dropped, matching a closed-channel send being
// impossible upstream of this point (the router stops addressing a worker
// it has been told to tear down).
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Broadcast()
}
