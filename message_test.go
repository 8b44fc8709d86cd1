package mailbox

import "testing"

func TestMsgHeaderRoundTrip(t *testing.T) {
	hdr := newMsgHeader(idMagic|7, 0x100, 8)
	buf := make([]byte, headerSize)
	hdr.encode(buf)

	got := decodeMsgHeader(buf)
	if got.totalSize != 8 {
		t.Errorf("totalSize = %d, want 8", got.totalSize)
	}
	if got.payloadSize() != 8 {
		t.Errorf("payloadSize() = %d, want 8", got.payloadSize())
	}
	if got.id != idMagic|7 {
		t.Errorf("id = %#x, want %#x", got.id, idMagic|7)
	}
	if got.opcode != 0x100 {
		t.Errorf("opcode = %#x, want 0x100", got.opcode)
	}
}

func TestMsgHeaderVersionField(t *testing.T) {
	hdr := newMsgHeader(0, 0, 4)
	version := (hdr.size >> 16) & 0xFF
	if version != protocolVersion {
		t.Errorf("protocol_version field = %d, want %d", version, protocolVersion)
	}
}

func TestMsgHeaderSizeMasked(t *testing.T) {
	// A payload length that doesn't fit 11 bits should still round-trip
	// through the masked field without panicking. Channel.Send bounds a
	// payload only by the X2I ring size, not by the 11-bit field, so this
	// only pins down the masking behavior itself.
	hdr := newMsgHeader(0, 0, 4096)
	if hdr.payloadSize() != 4096&0x7FF {
		t.Errorf("payloadSize() = %d, want %d", hdr.payloadSize(), 4096&0x7FF)
	}
}
