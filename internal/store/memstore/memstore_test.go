package memstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/vaulterr"
)

func TestSaveAndGetCompany(t *testing.T) {
	st := New()
	company := &vault.Company{Name: "acme", Users: []vault.User{{Username: "a"}, {Username: "b"}}}
	require.NoError(t, st.SaveCompany(company))

	got, err := st.GetCompany("acme")
	require.NoError(t, err)
	require.Equal(t, "acme", got.Name)
}

func TestSaveCompanyRejectsDuplicate(t *testing.T) {
	st := New()
	company := &vault.Company{Name: "acme"}
	require.NoError(t, st.SaveCompany(company))
	require.Error(t, st.SaveCompany(company))
}

func TestGetCompanyUnknown(t *testing.T) {
	st := New()
	_, err := st.GetCompany("ghost")
	require.ErrorIs(t, err, vaulterr.ErrNotFound)
}

func TestSaveFileListGet(t *testing.T) {
	st := New()
	require.NoError(t, st.SaveCompany(&vault.Company{Name: "acme"}))

	key := primitives.RandomKey()
	box, err := primitives.Encrypt([]byte("x"), &key)
	require.NoError(t, err)

	id, err := st.SaveFile("acme", box, box, box)
	require.NoError(t, err)

	files, err := st.ListFiles("acme")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, id, files[0].UUID)

	gotFile, gotKey, err := st.GetFile("acme", id)
	require.NoError(t, err)
	require.Equal(t, box, gotFile)
	require.Equal(t, box, gotKey)
}

func TestSaveFileUnknownCompany(t *testing.T) {
	st := New()
	key := primitives.RandomKey()
	box, _ := primitives.Encrypt([]byte("x"), &key)
	_, err := st.SaveFile("ghost", box, box, box)
	require.ErrorIs(t, err, vaulterr.ErrNotFound)
}
