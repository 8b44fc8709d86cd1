package mailbox

import (
	"encoding/binary"
	"time"
)

// headerSize is the wire size of msgHeader: total_size(4) + size/rsvd/version/rsvd(4) + id(4) + opcode(4).
const headerSize = 16

// protocolVersion is the only wire protocol this transport speaks.
// Fragmentation across packets (total_size != size) is not supported; see
// spec.md's Non-goals.
const protocolVersion = 1

// tombstone is the sentinel word a producer writes when it wraps the ring
// before the tail region can hold a full header.
const tombstone = 0xDEADFACE

// msgHeader mirrors struct xdna_msg_header from amdxdna_mailbox.c: 16 bytes,
// little-endian, with size/reserved/version/reserved packed into the second
// word.
type msgHeader struct {
	totalSize uint32
	size      uint32 // low 11 bits: size; bits 11-15 reserved; bits 16-23: protocol_version; bits 24-31 reserved
	id        uint32
	opcode    uint32
}

func newMsgHeader(id, opcode uint32, payloadLen int) msgHeader {
	size := uint32(payloadLen) & 0x7FF // 11 bits
	return msgHeader{
		totalSize: uint32(payloadLen),
		size:      size | (protocolVersion << 16),
		id:        id,
		opcode:    opcode,
	}
}

// payloadSize extracts the 11-bit size subfield (bits 0-10 of the second word).
func (h msgHeader) payloadSize() int {
	return int(h.size & 0x7FF)
}

// encode writes the 16-byte wire form of h into dst, which must be at least
// headerSize long.
func (h msgHeader) encode(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], h.totalSize)
	binary.LittleEndian.PutUint32(dst[4:8], h.size)
	binary.LittleEndian.PutUint32(dst[8:12], h.id)
	binary.LittleEndian.PutUint32(dst[12:16], h.opcode)
}

// decodeMsgHeader parses a 16-byte wire header from src.
func decodeMsgHeader(src []byte) msgHeader {
	return msgHeader{
		totalSize: binary.LittleEndian.Uint32(src[0:4]),
		size:      binary.LittleEndian.Uint32(src[4:8]),
		id:        binary.LittleEndian.Uint32(src[8:12]),
		opcode:    binary.LittleEndian.Uint32(src[12:16]),
	}
}

// Callback is invoked at most once per Send, with the response payload and
// its length, or with data == nil, size == 0 if the channel was torn down
// before a response arrived.
type Callback func(handle any, data []byte, size int)

// Message is the caller-visible request passed to Channel.Send.
type Message struct {
	// Handle is opaque to the transport; it is passed back to Callback
	// unmodified.
	Handle any
	// Callback is invoked at most once with the response, or with a nil
	// payload if the channel is destroyed before a response arrives. May
	// be nil if the caller does not need a response.
	Callback Callback
	// Opcode identifies the command carried in Payload to the higher-level
	// protocol; the transport never interprets it.
	Opcode uint32
	// Payload is the request body. Its length must be a multiple of 4 and
	// its first word must not equal the tombstone sentinel.
	Payload []byte
	// Timeout is stored for higher layers (e.g. to arm a timer around
	// Callback) but is never used by the transport itself. See spec.md
	// §9's open question on tx_timeout.
	Timeout time.Duration
}

// asyncMessage is a device-originated message not correlated to any
// pending request (its ID's high bit is set).
type asyncMessage struct {
	Opcode  uint32
	Payload []byte
}

// AsyncMessage is the caller-visible form returned by WaitAsync.
type AsyncMessage struct {
	Opcode  uint32
	Payload []byte
}
