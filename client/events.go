package client

import (
	"fmt"
	"sync"

	"github.com/pinhole-run/pinhole/message"
)

// Event is delivered to every subscriber registered via
// NetworkSession.Subscribe.
type Event interface {
	isEvent()
}

// DocumentUpdated reports a freshly rendered document, the terminal
// reply to a Load.
type DocumentUpdated struct {
	Document message.Document
}

func (DocumentUpdated) isEvent() {}

// ServerError reports a non-UpgradeRequired Error from the server, or
// (as the session's last event) an UpgradeRequired one. UIs typically
// render these inline without navigating away.
type ServerError struct {
	Code    message.ErrorCode
	Message string
}

func (ServerError) isEvent() {}

func (e ServerError) Error() string {
	return fmt.Sprintf("client: server error %s: %s", e.Code, e.Message)
}

// broadcaster fans a single stream of events out to any number of
// subscribers. It mirrors the registry-with-mutex shape used elsewhere
// in this codebase for small, infrequently-changing sets of listeners,
// adapted here to hold live channels instead of static hooks.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

// subscribe registers a new listener and returns its channel and an
// unsubscribe function. The channel is buffered so a slow subscriber
// does not stall delivery to others; it is closed on unsubscribe.
func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, 32)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// send delivers ev to every current subscriber, dropping it for any
// subscriber whose buffer is full rather than blocking the session
// loop. It fails only when there are no subscribers at all, which per
// spec.md §4.5 is treated as the UI having gone away.
func (b *broadcaster) send(ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.subs) == 0 {
		return ErrNoSubscribers
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}
