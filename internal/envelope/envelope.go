// Package envelope implements the per-file key wrapping described in spec
// §4.4: every file body is encrypted under a fresh random key, and only that
// small key — never the body — is wrapped under the company master key.
package envelope

import (
	"fmt"

	"github.com/webblitchy/securevault/internal/primitives"
)

// Sealed is the result of wrapping a file: its ciphertext under a fresh
// per-file key, and that key wrapped under the master key.
type Sealed struct {
	File    primitives.EncryptedBox
	FileKey primitives.EncryptedBox
}

// Seal encrypts body under a fresh random file key, then wraps that key
// under masterKey. The master key never encrypts a file body directly, so a
// future master-key rotation could be limited to rewrapping FileKey blobs.
func Seal(body []byte, masterKey [primitives.KeySize]byte) (Sealed, error) {
	fileKey := primitives.RandomKey()

	encFile, err := primitives.Encrypt(body, &fileKey)
	if err != nil {
		return Sealed{}, fmt.Errorf("sealing file body: %w", err)
	}
	encFileKey, err := primitives.Encrypt(fileKey[:], &masterKey)
	if err != nil {
		return Sealed{}, fmt.Errorf("wrapping file key: %w", err)
	}
	return Sealed{File: encFile, FileKey: encFileKey}, nil
}

// Open reverses Seal: it unwraps the file key with masterKey, then decrypts
// the file body with it.
func Open(sealed Sealed, masterKey [primitives.KeySize]byte) ([]byte, error) {
	rawKey, err := primitives.Decrypt(sealed.FileKey, &masterKey)
	if err != nil {
		return nil, fmt.Errorf("unwrapping file key: %w", err)
	}
	if len(rawKey) != primitives.KeySize {
		return nil, fmt.Errorf("unwrapped file key has length %d, want %d", len(rawKey), primitives.KeySize)
	}
	var fileKey [primitives.KeySize]byte
	copy(fileKey[:], rawKey)

	body, err := primitives.Decrypt(sealed.File, &fileKey)
	if err != nil {
		return nil, fmt.Errorf("decrypting file body: %w", err)
	}
	return body, nil
}

// SealName encrypts a filename under the master key directly (names are
// small enough not to need a per-file key of their own).
func SealName(name string, masterKey [primitives.KeySize]byte) (primitives.EncryptedBox, error) {
	box, err := primitives.Encrypt([]byte(name), &masterKey)
	if err != nil {
		return primitives.EncryptedBox{}, fmt.Errorf("sealing filename: %w", err)
	}
	return box, nil
}

// OpenName decrypts a filename previously sealed with SealName.
func OpenName(box primitives.EncryptedBox, masterKey [primitives.KeySize]byte) (string, error) {
	raw, err := primitives.Decrypt(box, &masterKey)
	if err != nil {
		return "", fmt.Errorf("decrypting filename: %w", err)
	}
	return string(raw), nil
}
