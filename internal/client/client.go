// Package client is the connection-oriented counterpart to internal/server:
// it drives the handshake and file operations of spec §4.6-§4.8 from the
// caller's side of a net.Conn, translating each into framed wire requests.
package client

import (
	"fmt"
	"net"

	"github.com/webblitchy/securevault/internal/fileproto"
	"github.com/webblitchy/securevault/internal/session"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/vaulterr"
	"github.com/webblitchy/securevault/internal/wire"
)

// Session wraps one authenticated connection. It is the only way a caller
// can reach the file operations; its fields are unexported, so outside this
// package a usable Session comes only from Authenticate.
type Session struct {
	conn  net.Conn
	authd *session.Authed
}

// Dial opens a TCP connection to addr. The connection is unauthenticated
// until Authenticate succeeds.
func Dial(addr string) (net.Conn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing %s: %v", vaulterr.ErrTransientIO, addr, err)
	}
	return conn, nil
}

// CreateCompany builds a brand-new Company entirely client-side (spec §4.5
// "Create" steps 1-4: fresh master/hmac keys, fresh shards, per-user salts
// and KEK-wrapped shards) and submits only the finished record over conn.
// No password and no plaintext master key leaves this function; the
// record's HMACKey is sent in the clear, as the server keeps it. The
// caller still needs to separately Authenticate to begin a file session,
// mirroring spec §4.5's "Create" being a one-shot operation distinct from
// "Auth".
func CreateCompany(conn net.Conn, companyName string, inputs []vault.UserInput) error {
	company, _, _, err := vault.NewCompany(companyName, inputs)
	if err != nil {
		return err
	}

	if err := wire.WriteRequest(conn, wire.RequestCreateCompany, wire.CreateCompanyRequest{Company: *company}); err != nil {
		return fmt.Errorf("%w: sending CreateCompany: %v", vaulterr.ErrTransientIO, err)
	}

	frame, err := wire.ReadFrame(conn)
	if err != nil {
		return fmt.Errorf("%w: reading CreateCompany reply: %v", vaulterr.ErrTransientIO, err)
	}
	if string(frame) != string(wire.StatusOK) {
		return fmt.Errorf("%w: server rejected CreateCompany", vaulterr.ErrStorage)
	}
	return nil
}

// Authenticate runs the four-message handshake (spec §4.6) over conn and
// returns a ready-to-use Session on success.
func Authenticate(conn net.Conn, companyName, userA, userB, passwordA, passwordB string) (*Session, error) {
	authd, err := session.RunClientHandshake(conn, companyName, userA, userB, passwordA, passwordB)
	if err != nil {
		return nil, err
	}
	return &Session{conn: conn, authd: authd}, nil
}

// Upload seals filePath's basename and body under the session's master key
// and sends it as a RequestUploadFile.
func (s *Session) Upload(filePath string, body []byte) error {
	req, err := fileproto.BuildUpload(filePath, body, s.authd.MasterKey)
	if err != nil {
		return err
	}
	if err := wire.WriteRequest(s.conn, wire.RequestUploadFile, req); err != nil {
		return fmt.Errorf("%w: sending UploadFile: %v", vaulterr.ErrTransientIO, err)
	}
	frame, err := wire.ReadFrame(s.conn)
	if err != nil {
		return fmt.Errorf("%w: reading UploadFile reply: %v", vaulterr.ErrTransientIO, err)
	}
	if string(frame) != string(wire.StatusOK) {
		return fmt.Errorf("%w: server rejected upload", vaulterr.ErrStorage)
	}
	return nil
}

// ListFiles requests the filename index and decrypts every name under the
// session's master key.
func (s *Session) ListFiles() ([]fileproto.NamedFile, error) {
	if err := wire.WriteRequest(s.conn, wire.RequestGetFilenames, nil); err != nil {
		return nil, fmt.Errorf("%w: sending GetFilenames: %v", vaulterr.ErrTransientIO, err)
	}
	var listing wire.FilenameListing
	if err := wire.ReadReply(s.conn, &listing); err != nil {
		return nil, fmt.Errorf("%w: reading filename listing: %v", vaulterr.ErrTransientIO, err)
	}
	return fileproto.DecryptListing(listing.Files, s.authd.MasterKey)
}

// Download fetches and decrypts the file identified by uuid.
func (s *Session) Download(uuid string) ([]byte, error) {
	if err := wire.WriteRequest(s.conn, wire.RequestDownloadFile, wire.DownloadRequest{UUID: uuid}); err != nil {
		return nil, fmt.Errorf("%w: sending DownloadFile: %v", vaulterr.ErrTransientIO, err)
	}
	frame, isKO, err := wire.ReadStatusOrFrame(s.conn)
	if err != nil {
		return nil, fmt.Errorf("%w: reading DownloadFile reply: %v", vaulterr.ErrTransientIO, err)
	}
	if isKO {
		return nil, vaulterr.ErrNotFound
	}
	var reply wire.DownloadReply
	if err := wire.UnmarshalRequestBody(frame, &reply); err != nil {
		return nil, fmt.Errorf("%w: decoding DownloadFile reply: %v", vaulterr.ErrProtocol, err)
	}
	return fileproto.OpenDownload(reply, s.authd.MasterKey)
}

// RegenerateKey re-splits the group secret around a fresh user set without
// changing the master or HMAC keys (spec §4.5 "Re-key" steps 2-4): fresh
// shards, fresh per-user salts, and fresh KEK-wrappings are built here,
// client-side, from the master and hmac keys this session already holds in
// memory from authentication. Only the finished record is submitted; no
// password and no plaintext master key reaches the server, while the
// record's unchanged HMACKey is sent in the clear for the server to check.
func (s *Session) RegenerateKey(inputs []vault.UserInput) error {
	company, err := vault.Rekey(s.authd.CompanyName, s.authd.MasterKey, s.authd.HMACKey, inputs)
	if err != nil {
		return err
	}

	req := wire.RegenerateKeyRequest{Company: *company}
	if err := wire.WriteRequest(s.conn, wire.RequestRegenerateKey, req); err != nil {
		return fmt.Errorf("%w: sending RegenerateKey: %v", vaulterr.ErrTransientIO, err)
	}
	frame, err := wire.ReadFrame(s.conn)
	if err != nil {
		return fmt.Errorf("%w: reading RegenerateKey reply: %v", vaulterr.ErrTransientIO, err)
	}
	if string(frame) != string(wire.StatusOK) {
		return fmt.Errorf("%w: server rejected RegenerateKey", vaulterr.ErrStorage)
	}
	return nil
}

// Close tells the server this connection is done and closes the underlying
// net.Conn. It is the one wire message spec §9 calls out as needing to be
// explicit rather than inferred from EOF.
func (s *Session) Close() error {
	if err := wire.WriteRequest(s.conn, wire.RequestCloseConnection, nil); err != nil {
		_ = s.conn.Close()
		return fmt.Errorf("%w: sending CloseConnection: %v", vaulterr.ErrTransientIO, err)
	}
	return s.conn.Close()
}
