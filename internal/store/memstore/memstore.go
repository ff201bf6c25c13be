// Package memstore is an in-memory Store implementation used by tests that
// need a real internal/store.Store without touching the filesystem.
package memstore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/vaulterr"
)

type fileBlob struct {
	encFile    primitives.EncryptedBox
	encFileKey primitives.EncryptedBox
}

type companyRecord struct {
	company *vault.Company
	index   []vault.FileNameBox
	blobs   map[string]fileBlob
}

// Store is a Store backed by in-process maps. One mutex guards every
// company, so all operations are serialized across company names too.
type Store struct {
	mu        sync.Mutex
	companies map[string]*companyRecord
}

// New returns an empty Store.
func New() *Store {
	return &Store{companies: make(map[string]*companyRecord)}
}

func (s *Store) GetCompany(name string) (*vault.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.companies[name]
	if !ok {
		return nil, vaulterr.ErrNotFound
	}
	copied := *rec.company
	return &copied, nil
}

func (s *Store) SaveCompany(company *vault.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[company.Name]; ok {
		return fmt.Errorf("%w: company %q already exists", vaulterr.ErrStorage, company.Name)
	}
	copied := *company
	s.companies[company.Name] = &companyRecord{
		company: &copied,
		blobs:   make(map[string]fileBlob),
	}
	return nil
}

func (s *Store) SaveCompanyData(company *vault.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.companies[company.Name]
	if !ok {
		return vaulterr.ErrNotFound
	}
	copied := *company
	rec.company = &copied
	return nil
}

func (s *Store) SaveFile(companyName string, encFile, encName, encFileKey primitives.EncryptedBox) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.companies[companyName]
	if !ok {
		return "", vaulterr.ErrNotFound
	}
	id := uuid.NewString()
	rec.blobs[id] = fileBlob{encFile: encFile, encFileKey: encFileKey}
	rec.index = append(rec.index, vault.FileNameBox{UUID: id, EncryptedName: encName})
	return id, nil
}

func (s *Store) ListFiles(companyName string) ([]vault.FileNameBox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.companies[companyName]
	if !ok {
		return nil, vaulterr.ErrNotFound
	}
	out := make([]vault.FileNameBox, len(rec.index))
	copy(out, rec.index)
	return out, nil
}

func (s *Store) GetFile(companyName, id string) (encFile, encFileKey primitives.EncryptedBox, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.companies[companyName]
	if !ok {
		return primitives.EncryptedBox{}, primitives.EncryptedBox{}, vaulterr.ErrNotFound
	}
	blob, ok := rec.blobs[id]
	if !ok {
		return primitives.EncryptedBox{}, primitives.EncryptedBox{}, vaulterr.ErrNotFound
	}
	return blob.encFile, blob.encFileKey, nil
}
