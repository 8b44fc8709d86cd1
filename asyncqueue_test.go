package mailbox

import (
	"testing"
	"time"
)

func TestAsyncQueuePushPop(t *testing.T) {
	q := newAsyncQueue()

	if _, ok := q.pop(); ok {
		t.Fatalf("pop on empty queue returned ok=true")
	}

	q.push(asyncMessage{Opcode: 1})
	q.push(asyncMessage{Opcode: 2})

	first, ok := q.pop()
	if !ok || first.Opcode != 1 {
		t.Fatalf("pop = %+v, %v, want opcode 1", first, ok)
	}
	second, ok := q.pop()
	if !ok || second.Opcode != 2 {
		t.Fatalf("pop = %+v, %v, want opcode 2", second, ok)
	}
}

func TestAsyncQueueBlockingWait(t *testing.T) {
	q := newAsyncQueue()

	done := make(chan error, 1)
	go func() { done <- q.wait() }()

	select {
	case <-done:
		t.Fatal("wait returned before any push")
	case <-time.After(20 * time.Millisecond):
	}

	q.push(asyncMessage{Opcode: 7})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait after push = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait never returned after push")
	}
}

func TestAsyncQueueCloseInterruptsWaiters(t *testing.T) {
	q := newAsyncQueue()

	done := make(chan error, 1)
	go func() { done <- q.wait() }()

	time.Sleep(10 * time.Millisecond)
	q.close()

	select {
	case err := <-done:
		if err != ErrInterrupted {
			t.Fatalf("wait after close = %v, want ErrInterrupted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("wait never woken by close")
	}

	// close is idempotent.
	q.close()
}

func TestAsyncQueueDrain(t *testing.T) {
	q := newAsyncQueue()
	q.push(asyncMessage{Opcode: 1})
	q.push(asyncMessage{Opcode: 2})

	drained := q.drain()
	if len(drained) != 2 {
		t.Fatalf("drain returned %d messages, want 2", len(drained))
	}
	if _, ok := q.pop(); ok {
		t.Fatalf("pop after drain returned ok=true")
	}
}
