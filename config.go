package mailbox

import "sync"

// ChannelConfig holds the tunables the original C driver hard-codes as
// preprocessor constants. Exposed as a struct with package defaults,
// mirroring the teacher's exported-field WaitStrategy in spin.go, rather
// than a config file or environment variable — nothing in the retrieved
// pack reads configuration any other way (see SPEC_FULL.md's AMBIENT
// STACK).
type ChannelConfig struct {
	// LingerMinSpin, LingerMaxSpin, LingerIncStep, LingerDecStep tune the
	// receive worker's adaptive post-drain linger (spin.go). Zero values
	// fall back to newLingerStrategy's defaults.
	LingerMinSpin, LingerMaxSpin, LingerIncStep, LingerDecStep int32
}

// DefaultChannelConfig returns the package defaults.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{}
}

func (c ChannelConfig) linger() *lingerStrategy {
	l := newLingerStrategy()
	if c.LingerMinSpin > 0 {
		l.minSpin = c.LingerMinSpin
	}
	if c.LingerMaxSpin > 0 {
		l.maxSpin = c.LingerMaxSpin
	}
	if c.LingerIncStep > 0 {
		l.incStep = c.LingerIncStep
	}
	if c.LingerDecStep > 0 {
		l.decStep = c.LingerDecStep
	}
	l.currentLimit = l.minSpin
	return l
}

// warnOnce gates a diagnostic so a wedged device raising the same condition
// repeatedly (e.g. a persistently invalid header) logs it a single time per
// channel lifetime, matching the intent of the original driver's
// WARN_ONCE/MB_DBG call sites without spamming the log on every drained
// interrupt.
type warnOnce struct {
	once sync.Once
}

func (w *warnOnce) do(f func()) {
	w.once.Do(f)
}
