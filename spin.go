package mailbox

import (
	"runtime"
	"sync/atomic"
)

// lingerStrategy implements an adaptive spin-then-yield wait, used by the
// receive worker to absorb an interrupt that arrives immediately after the
// ring has been drained, without paying the cost of a second schedule/wake
// round trip through the interrupt handler.
type lingerStrategy struct {
	currentLimit int32
	minSpin      int32
	maxSpin      int32
	incStep      int32
	decStep      int32
}

// newLingerStrategy returns a lingerStrategy with default tunables.
func newLingerStrategy() *lingerStrategy {
	return &lingerStrategy{
		currentLimit: 200,
		minSpin:      16,
		maxSpin:      2000,
		incStep:      64,
		decStep:      32,
	}
}

// wait spins on condition up to the current limit, yielding periodically.
// It rewards the limit on success and punishes it on failure, so a channel
// that regularly sees back-to-back interrupts lingers longer over time,
// while an idle channel decays back toward minSpin.
func (w *lingerStrategy) wait(condition func() bool) bool {
	limit := int(atomic.LoadInt32(&w.currentLimit))

	for i := 0; i < limit; i++ {
		if condition() {
			if limit < int(w.maxSpin) {
				newLimit := limit + int(w.incStep)
				if newLimit > int(w.maxSpin) {
					newLimit = int(w.maxSpin)
				}
				atomic.StoreInt32(&w.currentLimit, int32(newLimit))
			}
			return true
		}
		if i&0x3F == 0 {
			runtime.Gosched()
		}
	}

	if limit > int(w.minSpin) {
		newLimit := limit - int(w.decStep)
		if newLimit < int(w.minSpin) {
			newLimit = int(w.minSpin)
		}
		atomic.StoreInt32(&w.currentLimit, int32(newLimit))
	}
	return false
}
