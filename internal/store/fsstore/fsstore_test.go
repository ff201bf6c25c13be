package fsstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/vaulterr"
)

func testCompany(name string) *vault.Company {
	return &vault.Company{
		Name: name,
		Users: []vault.User{
			{Username: "alice", Salt: primitives.RandomSalt()},
			{Username: "bob", Salt: primitives.RandomSalt()},
		},
		HMACKey: primitives.RandomKey(),
	}
}

func TestSaveAndGetCompanyRoundTrip(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	company := testCompany("Acme Widgets")
	require.NoError(t, st.SaveCompany(company))

	got, err := st.GetCompany("Acme Widgets")
	require.NoError(t, err)
	require.Equal(t, company.Name, got.Name)
	require.Len(t, got.Users, 2)
}

func TestSaveCompanyRejectsDuplicate(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	company := testCompany("acme")
	require.NoError(t, st.SaveCompany(company))
	require.Error(t, st.SaveCompany(company))
}

func TestGetCompanyUnknownIsNotFound(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.GetCompany("ghost corp")
	require.ErrorIs(t, err, vaulterr.ErrNotFound)
}

func TestEscapeNameFoldsSpacesSlashesAndAccents(t *testing.T) {
	require.Equal(t, "Acme-Widgets", escapeName("Acme Widgets"))
	require.Equal(t, "a-b-c", escapeName("a/b c"))
	require.Equal(t, "Cafe", escapeName("Café"))
}

func TestSaveFileAndListAndGet(t *testing.T) {
	base := t.TempDir()
	st, err := New(base)
	require.NoError(t, err)

	company := testCompany("acme")
	require.NoError(t, st.SaveCompany(company))

	key := primitives.RandomKey()
	encFile, err := primitives.Encrypt([]byte("file body"), &key)
	require.NoError(t, err)
	encName, err := primitives.Encrypt([]byte("report.txt"), &key)
	require.NoError(t, err)
	encFileKey, err := primitives.Encrypt(key[:], &key)
	require.NoError(t, err)

	id, err := st.SaveFile("acme", encFile, encName, encFileKey)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.FileExists(t, filepath.Join(base, "acme", "files", id+".data"))
	require.FileExists(t, filepath.Join(base, "acme", "files", id+".key"))

	listed, err := st.ListFiles("acme")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, id, listed[0].UUID)

	gotFile, gotKey, err := st.GetFile("acme", id)
	require.NoError(t, err)
	require.Equal(t, encFile, gotFile)
	require.Equal(t, encFileKey, gotKey)
}

func TestGetFileUnknownIsNotFound(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)
	company := testCompany("acme")
	require.NoError(t, st.SaveCompany(company))

	_, _, err = st.GetFile("acme", "no-such-uuid")
	require.ErrorIs(t, err, vaulterr.ErrNotFound)
}

func TestSaveCompanyDataOverwritesPreservingFileIndex(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)
	company := testCompany("acme")
	require.NoError(t, st.SaveCompany(company))

	key := primitives.RandomKey()
	box, err := primitives.Encrypt([]byte("x"), &key)
	require.NoError(t, err)
	_, err = st.SaveFile("acme", box, box, box)
	require.NoError(t, err)

	rekeyed := testCompany("acme")
	rekeyed.Users = []vault.User{{Username: "carol", Salt: primitives.RandomSalt()}, {Username: "dave", Salt: primitives.RandomSalt()}}
	require.NoError(t, st.SaveCompanyData(rekeyed))

	got, err := st.GetCompany("acme")
	require.NoError(t, err)
	require.Equal(t, "carol", got.Users[0].Username)

	files, err := st.ListFiles("acme")
	require.NoError(t, err)
	require.Len(t, files, 1)
}
