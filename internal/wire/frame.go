package wire

import (
	"errors"
	"fmt"
	"io"

	xdr "github.com/davecgh/go-xdr/xdr2"
)

// MaxFrameSize bounds a single frame. The reference implementation had no
// such limit; an unbounded length prefix from a hostile or confused peer
// would otherwise let ReadFrame allocate without bound.
const MaxFrameSize = 64 << 20 // 64 MiB

// ErrProtocol is returned for any frame that violates the wire contract:
// truncated, over MaxFrameSize, or an unknown request tag.
var ErrProtocol = errors.New("wire: protocol error")

// WriteFrame encodes payload as a single XDR variable-length opaque value.
// XDR's own 4-byte big-endian length prefix (padded to a 4-byte boundary)
// is what replaces the reference implementation's 64-byte short-read
// heuristic (spec §5, §9): a reader here always knows exactly how many
// bytes to expect, so a payload length that happens to be a multiple of 64
// can no longer wedge the reader.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: frame of %d bytes exceeds %d byte limit", ErrProtocol, len(payload), MaxFrameSize)
	}
	if _, err := xdr.Marshal(w, payload); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// ReadFrame reads one XDR variable-length opaque value, capped at
// MaxFrameSize.
func ReadFrame(r io.Reader) ([]byte, error) {
	var payload []byte
	if _, err := xdr.UnmarshalLimited(r, &payload, MaxFrameSize); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if payload == nil {
		// XDR decodes a zero-length opaque as nil; return it as an empty frame.
		payload = []byte{}
	}
	return payload, nil
}
