// Package store defines the opaque server-side persistence interface of
// spec §4.8. internal/store/fsstore and internal/store/memstore are the two
// concrete implementations: a filesystem-backed store matching the
// reference layout (spec §6) and an in-memory store used by tests.
package store

import (
	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
)

// Store is the persistence contract the session and server-dispatch layers
// consume. Implementations MUST serialize CreateCompany per company name,
// and MUST serialize the file-index read-modify-write per company name
// (spec §5, §9) — callers do not take their own locks.
type Store interface {
	// GetCompany loads a company record, or returns vaulterr.ErrNotFound.
	GetCompany(name string) (*vault.Company, error)

	// SaveCompany creates a brand-new company with an empty file index. It
	// returns an error if the company already exists.
	SaveCompany(company *vault.Company) error

	// SaveCompanyData overwrites only the company record (spec §4.7
	// RegenerateKey), preserving the existing file index.
	SaveCompanyData(company *vault.Company) error

	// SaveFile allocates a fresh UUID, persists both blobs, and appends to
	// the company's filename index.
	SaveFile(companyName string, encFile, encName, encFileKey primitives.EncryptedBox) (id string, err error)

	// ListFiles returns the company's filename index.
	ListFiles(companyName string) ([]vault.FileNameBox, error)

	// GetFile loads the two blobs stored for (companyName, id).
	GetFile(companyName, id string) (encFile, encFileKey primitives.EncryptedBox, err error)
}
