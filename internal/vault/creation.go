package vault

import (
	"fmt"

	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/shamir"
)

// UserInput is a (username, password) pair supplied when creating or
// re-keying a company. Uniqueness of Username is enforced by NewCompany and
// Rekey, matching the check secure_cloud_client/src/creation.rs performs
// before assigning shards.
type UserInput struct {
	Username string
	Password string
}

// NewCompany creates a brand-new Company (spec §4.5, steps 1-4): fresh
// master key, fresh HMAC key, fresh grouped-shards secret, one shard per
// user wrapped under that user's password-derived key.
//
// It returns the Company record (fit to hand to a store via CreateCompany)
// along with the plaintext master and HMAC keys, which the creating client
// already holds in memory and does not need to re-derive.
func NewCompany(name string, inputs []UserInput) (company *Company, masterKey, hmacKey [primitives.KeySize]byte, err error) {
	masterKey = primitives.RandomKey()
	hmacKey = primitives.RandomKey()

	company, err = rekeyWithKeys(name, masterKey, hmacKey, inputs)
	if err != nil {
		return nil, masterKey, hmacKey, err
	}
	return company, masterKey, hmacKey, nil
}

// Rekey rebuilds a Company's share tree around the SAME master and HMAC
// keys, with a fresh grouped-shards secret, fresh per-user salts, and
// (potentially) a new user set (spec §4.5 "Re-key"). Existing file-key
// wrappings remain decryptable because masterKey does not change.
func Rekey(name string, masterKey, hmacKey [primitives.KeySize]byte, inputs []UserInput) (*Company, error) {
	return rekeyWithKeys(name, masterKey, hmacKey, inputs)
}

func rekeyWithKeys(name string, masterKey, hmacKey [primitives.KeySize]byte, inputs []UserInput) (*Company, error) {
	if len(inputs) < MinUsers {
		return nil, fmt.Errorf("need at least %d users, got %d", MinUsers, len(inputs))
	}
	if len(inputs) > shamir.MaxShares {
		return nil, fmt.Errorf("too many users: %d exceeds the %d shamir share limit", len(inputs), shamir.MaxShares)
	}

	var groupedShards [shamir.SecretSize]byte
	copy(groupedShards[:], primitives.RandomBytes(shamir.SecretSize))
	groupKey := primitives.Hash64(groupedShards[:])
	masterKEK, hmacKEK := primitives.DeriveWrappingKeys(groupKey)

	shards, err := shamir.Split(&groupedShards, len(inputs))
	if err != nil {
		return nil, fmt.Errorf("splitting grouped shards: %w", err)
	}

	users := make([]User, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		if _, dup := seen[in.Username]; dup {
			return nil, fmt.Errorf("duplicate username %q", in.Username)
		}
		seen[in.Username] = struct{}{}

		salt := primitives.RandomSalt()
		kek := primitives.DeriveKey(in.Password, salt)
		encryptedShard, err := primitives.Encrypt(shards[i], &kek)
		if err != nil {
			return nil, fmt.Errorf("wrapping shard for %q: %w", in.Username, err)
		}
		users = append(users, User{
			Username:       in.Username,
			EncryptedShard: encryptedShard,
			Salt:           salt,
		})
	}

	masterKeyEncrypted, err := primitives.Encrypt(masterKey[:], &masterKEK)
	if err != nil {
		return nil, fmt.Errorf("wrapping master key: %w", err)
	}
	hmacKeyEncrypted, err := primitives.Encrypt(hmacKey[:], &hmacKEK)
	if err != nil {
		return nil, fmt.Errorf("wrapping hmac key: %w", err)
	}

	company := &Company{
		Name:               name,
		Users:              users,
		MasterKeyEncrypted: masterKeyEncrypted,
		HMACKey:            hmacKey,
		HMACKeyEncrypted:   hmacKeyEncrypted,
	}
	if err := company.Validate(); err != nil {
		return nil, err
	}
	return company, nil
}
