package vault

import (
	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/shamir"
)

// Credential is one (user record, password) pair supplied by a would-be
// session participant.
type Credential struct {
	User     User
	Password string
}

// BuildGroupKey is the single authentication gate (spec §4.3): it derives
// each credential's key-encryption-key, decrypts that user's shard, combines
// any two consistent shards, and hashes the result to the 32-byte group key.
//
// Every failure path — wrong password, wrong username upstream, a tampered
// shard, or even the same user supplied twice — returns ok=false with no
// further distinction, so that wrong-password and tampered-shard are
// indistinguishable to an outside observer.
func BuildGroupKey(creds []Credential) (groupKey [primitives.KeySize]byte, ok bool) {
	shards := make([]shamir.Shard, 0, len(creds))
	for _, cred := range creds {
		kek := primitives.DeriveKey(cred.Password, cred.User.Salt)
		shard, err := primitives.Decrypt(cred.User.EncryptedShard, &kek)
		if err != nil {
			return groupKey, false
		}
		shards = append(shards, shamir.Shard(shard))
	}

	combined, combineOK := shamir.Combine(shards)
	if !combineOK {
		return groupKey, false
	}

	return primitives.Hash64(combined[:]), true
}
