// Package primitives provides the fixed-width cryptographic building blocks
// the rest of the vault is built from: an authenticated-encryption envelope,
// a keyless hash, a memory-hard password KDF, a keyed MAC, and a CSPRNG.
//
// Every key handled here is exactly 32 bytes, every salt 16 bytes, every
// nonce 24 bytes; these widths are part of the wire and disk contract and
// must not drift independently per call site.
package primitives

import (
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the width of every symmetric key in the vault.
	KeySize = 32
	// SaltSize is the width of a per-user password salt.
	SaltSize = 16
	// NonceSize is the width of an EncryptedBox nonce.
	NonceSize = 24
)

// ErrAuthFailed is returned when an AEAD tag or MAC fails to verify. It never
// distinguishes which input was wrong, so callers cannot leak that
// distinction further up the stack (spec §7).
var ErrAuthFailed = errors.New("primitives: authentication failed")

// EncryptedBox is an authenticated-encryption envelope: a nonce and a
// ciphertext that carries its own 16-byte Poly1305 tag appended by
// secretbox.Seal. It is immutable once produced.
type EncryptedBox struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte
}

// Encrypt seals plaintext under key, generating a fresh random nonce.
func Encrypt(plaintext []byte, key *[KeySize]byte) (EncryptedBox, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return EncryptedBox{}, err
	}
	sealed := secretbox.Seal(nil, plaintext, &nonce, key)
	return EncryptedBox{Nonce: nonce, Ciphertext: sealed}, nil
}

// Decrypt opens box under key. Any tag mismatch collapses to ErrAuthFailed;
// this is a fatal authentication failure for the calling operation, never a
// distinguishable sub-error.
func Decrypt(box EncryptedBox, key *[KeySize]byte) ([]byte, error) {
	// A non-nil out slice keeps an empty plaintext from coming back as nil.
	plaintext, ok := secretbox.Open([]byte{}, box.Ciphertext, &box.Nonce, key)
	if !ok {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
