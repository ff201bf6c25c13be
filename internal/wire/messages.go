package wire

import (
	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
)

// AuthenticateRequest is the payload of RequestAuthenticateSession (spec
// §4.6 step 1).
type AuthenticateRequest struct {
	CompanyName string
	UserA       string
	UserB       string
}

// AuthChallenge is the server's reply once both usernames resolve (spec
// §4.6 step 2). Random is exactly 64 bytes; any other length is a protocol
// error.
type AuthChallenge struct {
	UserA            vault.User
	UserB            vault.User
	Random           [64]byte
	HMACKeyEncrypted primitives.EncryptedBox
}

// AuthTag is the client's MAC over the challenge (spec §4.6 step 3).
type AuthTag struct {
	Tag [primitives.KeySize]byte
}

// UploadRequest is the payload of RequestUploadFile (spec §4.4, §4.7).
type UploadRequest struct {
	EncFile    primitives.EncryptedBox
	EncName    primitives.EncryptedBox
	EncFileKey primitives.EncryptedBox
}

// FilenameListing is the reply to RequestGetFilenames.
type FilenameListing struct {
	Files []vault.FileNameBox
}

// DownloadRequest is the payload of RequestDownloadFile: the file's UUID.
type DownloadRequest struct {
	UUID string
}

// DownloadReply is the successful reply to RequestDownloadFile.
type DownloadReply struct {
	EncFile    primitives.EncryptedBox
	EncFileKey primitives.EncryptedBox
}

// CreateCompanyRequest is the payload of RequestCreateCompany (spec §4.5
// "Create" steps 1-4). Company is already fully built client-side: fresh
// shards, per-user salts and KEK-wrapped shards, and the master/hmac key
// wrappings. No password and no plaintext master key appears on this wire
// message; the record's HMACKey field does travel in the clear, since the
// server keeps it to verify handshake tags.
type CreateCompanyRequest struct {
	Company vault.Company
}

// RegenerateKeyRequest is the payload of RequestRegenerateKey (spec §4.5
// "Re-key" steps 2-4). Company is the already-rebuilt record: fresh shards,
// salts, and wrappings, built client-side from the master/hmac key the
// session already holds in memory. The server never sees a password or a
// plaintext master key; it only validates and stores the finished record.
type RegenerateKeyRequest struct {
	Company vault.Company
}
