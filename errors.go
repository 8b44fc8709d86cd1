package mailbox

import "errors"

// Sentinel errors for the transport's error taxonomy (spec.md §7). Callers
// should use errors.Is against these rather than string-matching.
var (
	// ErrInvalidArgument is returned when a payload is misaligned, oversize
	// for the X2I ring, or begins with the tombstone sentinel.
	ErrInvalidArgument = errors.New("mailbox: invalid argument")
	// ErrResourceExhausted is returned when the pending-message map is full
	// (256 outstanding requests).
	ErrResourceExhausted = errors.New("mailbox: resource exhausted")
	// ErrNoSpace is returned when the X2I ring cannot fit the framed message.
	ErrNoSpace = errors.New("mailbox: ring buffer full")
	// ErrTryAgain is returned by a non-blocking WaitAsync when the async
	// queue is empty.
	ErrTryAgain = errors.New("mailbox: try again")
	// ErrInterrupted is returned by a blocking WaitAsync woken without a
	// message ready.
	ErrInterrupted = errors.New("mailbox: interrupted")
	// ErrChannelClosed is returned by Send/WaitAsync once ChannelDestroy has
	// begun. Not named in spec.md's original taxonomy; see SPEC_FULL.md.
	ErrChannelClosed = errors.New("mailbox: channel closed")
	// ErrInvalidSize is returned by ChannelCreate when a ring size is not a
	// power of two.
	ErrInvalidSize = errors.New("mailbox: ring size must be a power of two")
)
