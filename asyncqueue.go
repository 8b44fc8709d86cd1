package mailbox

import "sync"

// asyncQueue is an ordered queue of async-message records guarded by a
// mutex, paired with a completion primitive that counts unconsumed wakeups
// — the Go counterpart of mailbox_async_msg's async_msg_list plus
// async_comp (a Linux struct completion) in amdxdna_mailbox.c. Locking
// follows the teacher's LockedSPSCQueue pattern (locked_queue.go): the
// mutex is held only across the slice mutation, never across a callback.
type asyncQueue struct {
	mu   sync.Mutex
	msgs []asyncMessage

	// comp is a counting completion: each push sends a non-blocking signal,
	// each successful wait consumes one (pop does not). Buffered to maxPendingEntries so a
	// burst of async messages never blocks the receive worker.
	comp chan struct{}
	// closed is closed by teardown to unblock a waiter with no message
	// ready, distinguishing "torn down" wakeups from real completions.
	closed chan struct{}
	once   sync.Once
}

func newAsyncQueue() *asyncQueue {
	return &asyncQueue{
		comp:   make(chan struct{}, maxPendingEntries),
		closed: make(chan struct{}),
	}
}

// push appends msg to the queue and signals the completion primitive.
func (q *asyncQueue) push(msg asyncMessage) {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()

	select {
	case q.comp <- struct{}{}:
	default:
		// Completion channel saturated: a pop is already guaranteed to
		// observe a non-empty queue, so the wakeup itself is redundant.
	}
}

// pop removes and returns the head of the queue, or ok=false if empty.
func (q *asyncQueue) pop() (asyncMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.msgs) == 0 {
		return asyncMessage{}, false
	}
	msg := q.msgs[0]
	q.msgs = q.msgs[1:]
	return msg, true
}

// wait blocks until a message is signaled ready or the queue is closed by
// teardown, returning ErrInterrupted in the latter case with no message
// consumed.
func (q *asyncQueue) wait() error {
	select {
	case <-q.comp:
		return nil
	case <-q.closed:
		return ErrInterrupted
	}
}

// close unblocks any waiter and marks the queue as torn down.
func (q *asyncQueue) close() {
	q.once.Do(func() { close(q.closed) })
}

// drain empties the queue, returning its contents (used by teardown to log
// or discard remaining async records).
func (q *asyncQueue) drain() []asyncMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.msgs
	q.msgs = nil
	return out
}
