// Package webhook implements the ingress HTTP endpoint that receives S3
// event notifications and fans them out to subscribers such as the cache
// engine's invalidation worker (spec §4.6).
package webhook

import "sync"

// broadcastBufferSize bounds how far behind a slow subscriber may fall
// before its oldest unread events are dropped in favor of newer ones.
const broadcastBufferSize = 256

// Broadcaster is a lossy fan-out channel: every subscriber gets every
// event sent after it subscribes, but a subscriber that falls behind has
// its oldest buffered events overwritten rather than blocking the sender.
// There is no Go-ecosystem equivalent among the example repos for this
// pattern; it is grounded on Rust's tokio::sync::broadcast /
// async_broadcast semantics (lag is reported to the receiver, not
// silently dropped) reimplemented with a channel-per-subscriber plus a
// counting wrapper (see DESIGN.md).
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*Receiver]struct{}
}

// NewBroadcaster constructs an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Receiver]struct{})}
}

// Subscribe registers a new Receiver that will observe every event sent
// after this call returns.
func (b *Broadcaster) Subscribe() *Receiver {
	r := &Receiver{
		events: make(chan S3Event, broadcastBufferSize),
		lag:    make(chan int, 1),
	}
	b.mu.Lock()
	b.subs[r] = struct{}{}
	b.mu.Unlock()
	return r
}

// Unsubscribe detaches r; its channel is closed so a blocked Recv returns.
func (b *Broadcaster) Unsubscribe(r *Receiver) {
	b.mu.Lock()
	delete(b.subs, r)
	b.mu.Unlock()
	r.close()
}

// Send delivers event to every current subscriber. A subscriber whose
// buffer is full has its oldest event dropped to make room, and its lag
// counter incremented, rather than blocking the sender.
func (b *Broadcaster) Send(event S3Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for r := range b.subs {
		r.deliver(event)
	}
}

// Receiver is a single subscriber's view of the broadcast stream.
type Receiver struct {
	mu     sync.Mutex
	events chan S3Event
	lag    chan int
	lagged int
	closed bool
}

func (r *Receiver) deliver(event S3Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- event:
	default:
		// Buffer full: drop the oldest event to make room and count the
		// loss, matching tokio::sync::broadcast's RecvError::Lagged.
		select {
		case <-r.events:
			r.lagged++
		default:
		}
		select {
		case r.events <- event:
		default:
		}
	}
}

func (r *Receiver) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.events)
}

// Recv blocks for the next event. It returns ok=false once the receiver
// has been unsubscribed and its buffer drained. A nonzero lagged reports
// how many events were dropped before this one due to buffer overflow;
// callers should log and continue rather than treat it as fatal (spec
// §4.5: "Drop overflow gaps with a logged warning and continue").
func (r *Receiver) Recv() (event S3Event, lagged int, ok bool) {
	r.mu.Lock()
	lagged = r.lagged
	r.lagged = 0
	r.mu.Unlock()

	if lagged > 0 {
		return S3Event{}, lagged, true
	}

	e, ok := <-r.events
	return e, 0, ok
}
