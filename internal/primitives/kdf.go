package primitives

import "golang.org/x/crypto/argon2"

// argonParams holds the Argon2id cost parameters for one of the two
// profiles named in spec §4.1. Exactly one of kdf_interactive.go or
// kdf_production.go is compiled in, selected by the "production" build tag
// — the profile is a compile-time decision, never a runtime option.
type argonParams struct {
	time    uint32
	memory  uint32
	threads uint8
}

// DeriveKey derives a 32-byte key-encryption-key from a password and a
// 16-byte salt using the build's Argon2id profile. Deterministic in
// (password, salt) within a given profile.
func DeriveKey(password string, salt [SaltSize]byte) [KeySize]byte {
	raw := argon2.IDKey([]byte(password), salt[:], kdfProfile.time, kdfProfile.memory, kdfProfile.threads, KeySize)
	var key [KeySize]byte
	copy(key[:], raw)
	return key
}
