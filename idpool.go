package mailbox

import "sync"

// maxPendingEntries is MAX_MSG_ID_ENTRIES from amdxdna_mailbox.c: the
// pending map is a fixed 256-slot table, not a general-purpose identifier
// registry (spec.md §9's design note).
const maxPendingEntries = 256

// idMagic is MAGIC_VAL: OR'd into the high byte of every issued ID so stray
// or malformed ID words can be detected cheaply on the receive path.
const idMagic = 0x1D000000
const idMagicMask = 0xFF000000

// asyncMsgStart is ASYNC_MSG_START_ID: IDs at or above this value denote
// device-originated async messages and are never allocated by this map.
const asyncMsgStart = 0x80000000

// pendingMsg is a pending-message record: the caller's handle and callback,
// plus the fully packaged (header+payload) bytes ready for transmission.
type pendingMsg struct {
	handle   any
	callback Callback
	pkg      []byte // header + payload, contiguous
}

// pendingMap is a sparse array-backed map from a small integer key
// (0..maxPendingEntries-1) to a pendingMsg, allocated cyclically to minimize
// collision with a just-freed ID's stale response. It is the direct Go
// counterpart to mailbox_acquire_msgid's idr_alloc_cyclic call over
// MAX_MSG_ID_ENTRIES.
type pendingMap struct {
	mu      sync.Mutex
	slots   [maxPendingEntries]*pendingMsg
	cursor  int
	count   int
}

// acquire allocates the next free cyclic slot for msg and returns the full
// wire ID (magic prefix | slot index), or ErrResourceExhausted if the map is
// full.
func (m *pendingMap) acquire(msg *pendingMsg) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.count >= maxPendingEntries {
		return 0, ErrResourceExhausted
	}

	start := m.cursor
	for {
		if m.slots[m.cursor] == nil {
			idx := m.cursor
			m.slots[idx] = msg
			m.count++
			m.cursor = (m.cursor + 1) % maxPendingEntries
			return idMagic | uint32(idx), nil
		}
		m.cursor = (m.cursor + 1) % maxPendingEntries
		if m.cursor == start {
			// Should be unreachable given the count check above, but
			// guards against count/slots drifting out of sync.
			return 0, ErrResourceExhausted
		}
	}
}

// release frees id's slot without returning its record (used when a send
// fails after acquiring an ID).
func (m *pendingMap) release(id uint32) {
	idx := int(id &^ idMagicMask)
	m.mu.Lock()
	if idx >= 0 && idx < maxPendingEntries && m.slots[idx] != nil {
		m.slots[idx] = nil
		m.count--
	}
	m.mu.Unlock()
}

// take removes and returns the pending record for id, if any. It is used on
// the response path: the lock is held only across the slice/count mutation,
// never across the resulting callback invocation.
func (m *pendingMap) take(id uint32) (*pendingMsg, bool) {
	idx := int(id &^ idMagicMask)
	if idx < 0 || idx >= maxPendingEntries {
		return nil, false
	}
	m.mu.Lock()
	msg := m.slots[idx]
	if msg != nil {
		m.slots[idx] = nil
		m.count--
	}
	m.mu.Unlock()
	return msg, msg != nil
}

// drain removes every pending record and returns them, for channel teardown.
// After drain returns, the map is empty.
func (m *pendingMap) drain() []*pendingMsg {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*pendingMsg, 0, m.count)
	for i := range m.slots {
		if m.slots[i] != nil {
			out = append(out, m.slots[i])
			m.slots[i] = nil
		}
	}
	m.count = 0
	return out
}

// validMagic reports whether id carries the magic prefix in its high byte.
func validMagic(id uint32) bool {
	return id&idMagicMask == idMagic
}

// isAsync reports whether id's high bit marks it as a device-originated
// async message.
func isAsync(id uint32) bool {
	return id >= asyncMsgStart
}
