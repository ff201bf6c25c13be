package server_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webblitchy/securevault/internal/client"
	"github.com/webblitchy/securevault/internal/server"
	"github.com/webblitchy/securevault/internal/store/memstore"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/vaulterr"
)

// startTestServer spins up a real TCP listener backed by an in-memory store
// and returns its address and a cleanup func.
func startTestServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.New(memstore.New(), zap.NewNop())
	go func() {
		_ = srv.Serve(ln)
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func twoUsers() []vault.UserInput {
	return []vault.UserInput{
		{Username: "alice", Password: "P@ssw0rd!longX"},
		{Username: "bob", Password: "AnotherStrong#1234"},
	}
}

// TestEndToEndCreateAuthUploadListDownload covers spec scenarios S1, S2, S4
// over a real TCP connection: create a company, authenticate, upload a
// file, list it back, and download it byte-for-byte.
func TestEndToEndCreateAuthUploadListDownload(t *testing.T) {
	addr := startTestServer(t)

	createConn, err := client.Dial(addr)
	require.NoError(t, err)
	require.NoError(t, client.CreateCompany(createConn, "acme", twoUsers()))
	require.NoError(t, createConn.Close())

	authConn, err := client.Dial(addr)
	require.NoError(t, err)
	sess, err := client.Authenticate(authConn, "acme", "alice", "bob", "P@ssw0rd!longX", "AnotherStrong#1234")
	require.NoError(t, err)
	defer sess.Close()

	body := []byte("hello vault")
	require.NoError(t, sess.Upload("/tmp/report.txt", body))

	files, err := sess.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "report.txt", files[0].Name)

	downloaded, err := sess.Download(files[0].UUID)
	require.NoError(t, err)
	require.Equal(t, body, downloaded)
}

// TestEndToEndWrongPasswordRejected is spec scenario S3.
func TestEndToEndWrongPasswordRejected(t *testing.T) {
	addr := startTestServer(t)

	createConn, err := client.Dial(addr)
	require.NoError(t, err)
	require.NoError(t, client.CreateCompany(createConn, "acme", twoUsers()))
	require.NoError(t, createConn.Close())

	authConn, err := client.Dial(addr)
	require.NoError(t, err)
	defer authConn.Close()
	_, err = client.Authenticate(authConn, "acme", "alice", "bob", "wrong-password", "AnotherStrong#1234")
	require.ErrorIs(t, err, vaulterr.ErrAuthFailed)
}

// TestEndToEndUnknownCompanyRejected confirms an unknown company name is
// indistinguishable from a wrong password (spec §7).
func TestEndToEndUnknownCompanyRejected(t *testing.T) {
	addr := startTestServer(t)

	conn, err := client.Dial(addr)
	require.NoError(t, err)
	defer conn.Close()
	_, err = client.Authenticate(conn, "no-such-company", "alice", "bob", "x", "y")
	require.ErrorIs(t, err, vaulterr.ErrAuthFailed)
}

// TestEndToEndRegenerateKeyThenReauth covers spec scenario S5 over the wire:
// after a re-key, authenticating with the new user set still recovers the
// same uploaded file.
func TestEndToEndRegenerateKeyThenReauth(t *testing.T) {
	addr := startTestServer(t)

	createConn, err := client.Dial(addr)
	require.NoError(t, err)
	require.NoError(t, client.CreateCompany(createConn, "acme", twoUsers()))
	require.NoError(t, createConn.Close())

	authConn, err := client.Dial(addr)
	require.NoError(t, err)
	sess, err := client.Authenticate(authConn, "acme", "alice", "bob", "P@ssw0rd!longX", "AnotherStrong#1234")
	require.NoError(t, err)

	body := []byte("pre-rekey file")
	require.NoError(t, sess.Upload("/tmp/a.txt", body))

	newUsers := []vault.UserInput{
		{Username: "carol", Password: "brandNewPass#1"},
		{Username: "dave", Password: "brandNewPass#2"},
	}
	require.NoError(t, sess.RegenerateKey(newUsers))
	require.NoError(t, sess.Close())

	reauthConn, err := client.Dial(addr)
	require.NoError(t, err)
	defer reauthConn.Close()
	newSess, err := client.Authenticate(reauthConn, "acme", "carol", "dave", "brandNewPass#1", "brandNewPass#2")
	require.NoError(t, err)
	defer newSess.Close()

	files, err := newSess.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 1)

	downloaded, err := newSess.Download(files[0].UUID)
	require.NoError(t, err)
	require.Equal(t, body, downloaded)
}

// TestEndToEndDownloadUnknownUUIDRejected confirms a download for a UUID the
// store never saved comes back as ErrNotFound rather than succeeding with
// garbage.
func TestEndToEndDownloadUnknownUUIDRejected(t *testing.T) {
	addr := startTestServer(t)

	createConn, err := client.Dial(addr)
	require.NoError(t, err)
	require.NoError(t, client.CreateCompany(createConn, "acme", twoUsers()))
	require.NoError(t, createConn.Close())

	authConn, err := client.Dial(addr)
	require.NoError(t, err)
	sess, err := client.Authenticate(authConn, "acme", "alice", "bob", "P@ssw0rd!longX", "AnotherStrong#1234")
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.Download("00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, vaulterr.ErrNotFound)
}
