package mailbox

import (
	"strings"

	"encoding/hex"
)

// snapshotCap is the byte limit on the ring dump, matching
// xdna_mailbox_ringbuf_show's fixed 4 KiB cap in the original driver.
const snapshotCap = 0x1000

// RingSnapshot is a read-only copy of one ring's descriptor and live
// register state, plus a bounded byte dump of its contents.
type RingSnapshot struct {
	Descriptor RingDescriptor `json:"descriptor"`
	Head       uint32         `json:"head"`
	Tail       uint32         `json:"tail"`
	Bytes      []byte         `json:"bytes"`
}

// ChannelSnapshot is a read-only copy of one channel's state, suitable for
// JSON-marshaling into a debug endpoint — the userspace-reachable
// counterpart of the original driver's debugfs show functions.
type ChannelSnapshot struct {
	IRQID uint32       `json:"irq_id"`
	X2I   RingSnapshot `json:"x2i"`
	I2X   RingSnapshot `json:"i2x"`
}

// Snapshot copies the channel list under the mailbox lock and returns one
// ChannelSnapshot per channel, read after the lock is released. Register values are read through the same
// ringAccessor the transport itself uses — introspection never takes a
// private path to the hardware.
func (mb *Mailbox) Snapshot() []ChannelSnapshot {
	channels := mb.channelList()
	out := make([]ChannelSnapshot, 0, len(channels))
	for _, ch := range channels {
		out = append(out, ch.snapshot())
	}
	return out
}

func (ch *Channel) snapshot() ChannelSnapshot {
	return ChannelSnapshot{
		IRQID: ch.irqID,
		X2I:   ch.acc.ringSnapshot(ch.x2i),
		I2X:   ch.acc.ringSnapshot(ch.i2x),
	}
}

func (r ringAccessor) ringSnapshot(d RingDescriptor) RingSnapshot {
	n := d.Size
	if n > snapshotCap {
		n = snapshotCap
	}
	return RingSnapshot{
		Descriptor: d,
		Head:       r.readReg(d.HeadReg),
		Tail:       r.readReg(d.TailReg),
		Bytes:      r.copyOut(d, 0, n),
	}
}

// HexDump renders the requested ring's byte dump the way
// xdna_mailbox_ringbuf_show's seq_hex_dump does.
func (s ChannelSnapshot) HexDump(dir ChannelDirection) string {
	ring := s.X2I
	if dir == DirectionI2X {
		ring = s.I2X
	}

	var b strings.Builder
	dumper := hex.Dumper(&b)
	_, _ = dumper.Write(ring.Bytes)
	_ = dumper.Close()
	return b.String()
}
