// Package vault implements the company data model, group-key recovery, and
// company creation / re-key described in spec §3, §4.3, and §4.5.
package vault

import (
	"fmt"

	"github.com/webblitchy/securevault/internal/primitives"
)

// MinUsers is the smallest user set a persisted Company may have (spec §3).
const MinUsers = 2

// User is one named member of a Company. EncryptedShard is only ever valid
// for the group key active when it was created.
type User struct {
	Username       string
	EncryptedShard primitives.EncryptedBox
	Salt           [primitives.SaltSize]byte
}

// Company is the full server-side record. HMACKey is held in the clear here
// — it is the server's documented trust boundary (spec §3, §9) — and MUST
// NOT be persisted by a client between sessions.
type Company struct {
	Name                string
	Users               []User
	MasterKeyEncrypted  primitives.EncryptedBox
	HMACKey             [primitives.KeySize]byte
	HMACKeyEncrypted    primitives.EncryptedBox
}

// Validate enforces the invariants spec §3 requires of any persisted
// Company: at least two users, and no duplicate usernames.
func (c *Company) Validate() error {
	if len(c.Users) < MinUsers {
		return fmt.Errorf("company %q has %d users, need at least %d", c.Name, len(c.Users), MinUsers)
	}
	seen := make(map[string]struct{}, len(c.Users))
	for _, u := range c.Users {
		if _, dup := seen[u.Username]; dup {
			return fmt.Errorf("company %q has duplicate username %q", c.Name, u.Username)
		}
		seen[u.Username] = struct{}{}
	}
	return nil
}

// UserByName finds a user by username, or reports ok=false. It does not
// distinguish "company has no such user" from any other auth failure to
// callers outside this package (spec §7) — callers at the protocol boundary
// must still collapse this into the single AuthFailed response.
func (c *Company) UserByName(username string) (User, bool) {
	for _, u := range c.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// FileNameBox pairs a file's UUID with its master-key-encrypted name (spec
// §3).
type FileNameBox struct {
	UUID          string
	EncryptedName primitives.EncryptedBox
}
