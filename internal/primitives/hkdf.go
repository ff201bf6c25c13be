package primitives

import (
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// DeriveWrappingKeys splits one high-entropy key into two independent
// 32-byte keys via HKDF, mirroring avahowell-occlude/crypto.go's
// deriveHKDFKeys: reading two fixed-size keys off one HKDF stream built from
// a single random source, rather than reusing that source directly for two
// different AEAD wrappings.
func DeriveWrappingKeys(groupKey [KeySize]byte) (masterKEK, hmacKEK [KeySize]byte) {
	stream := hkdf.New(sha3.New512, groupKey[:], nil, nil)
	if _, err := io.ReadFull(stream, masterKEK[:]); err != nil {
		panic("primitives: hkdf stream exhausted deriving masterKEK")
	}
	if _, err := io.ReadFull(stream, hmacKEK[:]); err != nil {
		panic("primitives: hkdf stream exhausted deriving hmacKEK")
	}
	return masterKEK, hmacKEK
}
