package primitives

import (
	"crypto/hmac"
	"crypto/sha256"
)

// ComputeMAC computes a 32-byte HMAC-SHA256 tag over msg keyed by key.
func ComputeMAC(key [KeySize]byte, msg []byte) [KeySize]byte {
	m := hmac.New(sha256.New, key[:])
	m.Write(msg)
	var tag [KeySize]byte
	copy(tag[:], m.Sum(nil))
	return tag
}

// VerifyMAC checks tag against the MAC of msg under key in constant time.
// hmac.Equal is used by both the teacher (pake.go) and
// other_examples/companyzero-zkc's session handshake for exactly this
// comparison.
func VerifyMAC(tag [KeySize]byte, key [KeySize]byte, msg []byte) error {
	expected := ComputeMAC(key, msg)
	if !hmac.Equal(expected[:], tag[:]) {
		return ErrAuthFailed
	}
	return nil
}
