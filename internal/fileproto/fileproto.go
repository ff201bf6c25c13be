// Package fileproto bridges the envelope/vault layers to the wire messages
// of spec §4.7, so that both internal/client and internal/server build and
// parse UploadFile/GetFilenames/DownloadFile payloads the same way.
package fileproto

import (
	"fmt"
	"path/filepath"

	"github.com/webblitchy/securevault/internal/envelope"
	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/wire"
)

// BuildUpload seals filePath's basename and contents under masterKey and
// produces the UploadFile request payload. The basename-only rule mirrors
// secure_cloud_client/src/files.rs's get_filename.
func BuildUpload(filePath string, body []byte, masterKey [primitives.KeySize]byte) (wire.UploadRequest, error) {
	name := filepath.Base(filePath)

	sealed, err := envelope.Seal(body, masterKey)
	if err != nil {
		return wire.UploadRequest{}, fmt.Errorf("sealing file: %w", err)
	}
	encName, err := envelope.SealName(name, masterKey)
	if err != nil {
		return wire.UploadRequest{}, fmt.Errorf("sealing filename: %w", err)
	}

	return wire.UploadRequest{
		EncFile:    sealed.File,
		EncName:    encName,
		EncFileKey: sealed.FileKey,
	}, nil
}

// NamedFile is one listing entry with its filename decrypted.
type NamedFile struct {
	UUID string
	Name string
}

// DecryptListing decrypts every name in a file listing under masterKey, so
// a caller can present a human-readable choice instead of opaque UUIDs
// (secure_cloud_client/src/requests.rs does this before prompting).
func DecryptListing(files []vault.FileNameBox, masterKey [primitives.KeySize]byte) ([]NamedFile, error) {
	named := make([]NamedFile, 0, len(files))
	for _, f := range files {
		name, err := envelope.OpenName(f.EncryptedName, masterKey)
		if err != nil {
			return nil, fmt.Errorf("decrypting filename for %s: %w", f.UUID, err)
		}
		named = append(named, NamedFile{UUID: f.UUID, Name: name})
	}
	return named, nil
}

// OpenDownload unwraps a DownloadReply into the original file bytes.
func OpenDownload(reply wire.DownloadReply, masterKey [primitives.KeySize]byte) ([]byte, error) {
	sealed := envelope.Sealed{File: reply.EncFile, FileKey: reply.EncFileKey}
	return envelope.Open(sealed, masterKey)
}
