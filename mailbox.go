package mailbox

import "sync"

// Mailbox is a container owning a set of channels that share one MMIO
// region: one mailbox-register base and one ring-buffer base. It is the Go
// counterpart of struct mailbox in amdxdna_mailbox.c, reshaped onto the
// teacher's pattern of a struct plus a mutex plus a channel list
// (IPCGuest/DirectGuest in guest_new.go/direct.go).
type Mailbox struct {
	mboxBase    uintptr
	ringbufBase uintptr

	// device identifies the owning device for log lines; opaque to this
	// package.
	device string

	mu       sync.Mutex
	channels []*Channel
}

// MailboxCreate constructs a Mailbox over the given register and
// ring-buffer region base addresses. device is carried only for logging.
func MailboxCreate(device string, mboxBase, ringbufBase uintptr) *Mailbox {
	return &Mailbox{
		device:      device,
		mboxBase:    mboxBase,
		ringbufBase: ringbufBase,
	}
}

// CreateChannel builds a Channel over this mailbox's region and tracks it
// in the channel list under the mailbox lock. The lock is held only across
// the list append, never across the channel's own construction work or
// interrupt registration, per spec.md §5's locking discipline.
func (mb *Mailbox) CreateChannel(x2i, i2x RingDescriptor, irqAckReg, irqID uint32, cfg ChannelConfig) (*Channel, error) {
	ch, err := ChannelCreate(mb, mb.mboxBase, mb.ringbufBase, x2i, i2x, irqAckReg, irqID, cfg)
	if err != nil {
		return nil, err
	}

	mb.mu.Lock()
	mb.channels = append(mb.channels, ch)
	mb.mu.Unlock()

	return ch, nil
}

// DestroyChannel tears down ch and removes it from the mailbox's list.
func (mb *Mailbox) DestroyChannel(ch *Channel) {
	ch.ChannelDestroy()
}

// removeChannel unlinks ch from the list; called by Channel.ChannelDestroy.
func (mb *Mailbox) removeChannel(ch *Channel) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i, c := range mb.channels {
		if c == ch {
			mb.channels = append(mb.channels[:i], mb.channels[i+1:]...)
			return
		}
	}
}

// MailboxDestroy warns if any channel remains registered (a programming
// error — the caller should have destroyed every channel first) but
// proceeds regardless, matching spec.md §4.8.
func (mb *Mailbox) MailboxDestroy() {
	mb.mu.Lock()
	remaining := len(mb.channels)
	mb.mu.Unlock()

	if remaining > 0 {
		Warn("mailbox: destroying mailbox with channels still registered", "device", mb.device, "count", remaining)
	}
}

// channelList returns a snapshot of the current channel list, for
// introspection.
func (mb *Mailbox) channelList() []*Channel {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	out := make([]*Channel, len(mb.channels))
	copy(out, mb.channels)
	return out
}
