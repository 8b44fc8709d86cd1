package mailbox

// worker is the single-threaded, single-reusable-work-item dispatcher that
// turns interrupt notifications into receive-drain passes. It is the direct
// counterpart of amdxdna_mailbox.c's create_singlethread_workqueue plus its
// one INIT_WORK'd rx_work item, reshaped as the teacher's client.go
// writeLoop: one goroutine draining a signal channel, with repeated
// schedule() calls before the goroutine wakes coalescing into a single
// drain pass (a buffered channel of size 1 makes the coalescing free).
type worker struct {
	signal chan struct{}
	stop   chan struct{}
	done   chan struct{}
}

// newWorker starts the worker goroutine, which calls drain once per
// schedule (coalesced) until stopAndWait is called.
func newWorker(drain func()) *worker {
	w := &worker{
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run(drain)
	return w
}

func (w *worker) run(drain func()) {
	defer close(w.done)
	for {
		select {
		case <-w.signal:
			drain()
		case <-w.stop:
			// Flush: a schedule() racing with stopAndWait() must still be
			// serviced, since it may correspond to a message the device
			// already wrote before the caller decided to tear down.
			select {
			case <-w.signal:
				drain()
			default:
			}
			return
		}
	}
}

// schedule requests a drain pass. Idempotent: a schedule that arrives while
// one is already pending (not yet started) is coalesced into it.
func (w *worker) schedule() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// stopAndWait requests the worker stop and blocks until it has quiesced,
// including flushing one final in-flight or pending drain.
func (w *worker) stopAndWait() {
	close(w.stop)
	<-w.done
}
