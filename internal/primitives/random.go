package primitives

import (
	"crypto/rand"
	"io"
)

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic("primitives: could not get entropy: " + err.Error())
	}
	return b
}

// RandomKey returns a fresh random 32-byte symmetric key.
func RandomKey() [KeySize]byte {
	var key [KeySize]byte
	copy(key[:], RandomBytes(KeySize))
	return key
}

// RandomSalt returns a fresh random 16-byte password salt.
func RandomSalt() [SaltSize]byte {
	var salt [SaltSize]byte
	copy(salt[:], RandomBytes(SaltSize))
	return salt
}
