package mailbox

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMailboxSnapshotReflectsLiveRegisters(t *testing.T) {
	_, regsBase := newSyntheticRegion(64)
	_, ringBase := newSyntheticRegion(8192)
	mb := MailboxCreate("test-device", regsBase, ringBase)

	x2i := RingDescriptor{StartOffset: 0, Size: 4096, HeadReg: 0, TailReg: 4}
	i2x := RingDescriptor{StartOffset: 4096, Size: 4096, HeadReg: 8, TailReg: 12}
	ch, err := mb.CreateChannel(x2i, i2x, 16, 1, DefaultChannelConfig())
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}

	if err := ch.Send(&Message{Opcode: 1, Payload: make([]byte, 4)}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	snaps := mb.Snapshot()
	if len(snaps) != 1 {
		t.Fatalf("snapshot count = %d, want 1", len(snaps))
	}
	if snaps[0].X2I.Tail == 0 {
		t.Fatalf("snapshot X2I tail = 0, want nonzero after a send")
	}

	if _, err := json.Marshal(snaps); err != nil {
		t.Fatalf("json.Marshal snapshot: %v", err)
	}
}

func TestChannelSnapshotHexDump(t *testing.T) {
	snap := ChannelSnapshot{
		X2I: RingSnapshot{Bytes: []byte{0xDE, 0xAD, 0xBE, 0xEF}},
	}

	dump := snap.HexDump(DirectionX2I)
	if !strings.Contains(dump, "de ad be ef") {
		t.Fatalf("hex dump = %q, want it to contain the byte sequence", dump)
	}
}
