package client

import (
	"sync"

	"github.com/pinhole-run/pinhole/message"
)

// Command is a UI intent enqueued on a NetworkSession's command queue.
type Command interface {
	isCommand()
}

type loadCommand struct {
	Path string
}

func (loadCommand) isCommand() {}

type actionCommand struct {
	Action message.Action
}

func (actionCommand) isCommand() {}

// commandQueue is an unbounded single-consumer queue fed by arbitrary
// UI goroutines: Push never blocks the caller on a full buffer (there
// is none) and only fails once the queue has been closed. A single
// buffered signal channel wakes the session loop whenever new items
// arrive, coalescing multiple pushes into one wakeup.
type commandQueue struct {
	mu     sync.Mutex
	items  []Command
	signal chan struct{}
	closed bool
}

func newCommandQueue() *commandQueue {
	return &commandQueue{signal: make(chan struct{}, 1)}
}

// push enqueues cmd. It returns ErrSessionClosed once close has been
// called; it never blocks.
func (q *commandQueue) push(cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrSessionClosed
	}
	q.items = append(q.items, cmd)
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

// drain returns and clears every item currently queued.
func (q *commandQueue) drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// wait returns the channel the session loop selects on to be woken
// when new commands are available.
func (q *commandQueue) wait() <-chan struct{} {
	return q.signal
}

// close marks the queue closed; further pushes fail.
func (q *commandQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
