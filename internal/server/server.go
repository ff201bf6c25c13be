// Package server implements the thread-per-connection TCP listener of spec
// §5 and the request handlers of §4.7, dispatching each framed request onto
// the session state machine and a pluggable internal/store.Store.
package server

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/webblitchy/securevault/internal/session"
	"github.com/webblitchy/securevault/internal/store"
	"github.com/webblitchy/securevault/internal/vaulterr"
	"github.com/webblitchy/securevault/internal/wire"
)

// Server accepts connections on a TCP listener and runs one goroutine per
// connection (spec §5's thread-per-connection model, translated to
// goroutines since Go does not expose OS threads directly).
type Server struct {
	store  store.Store
	logger *zap.Logger
}

// New returns a Server backed by st, logging through logger.
func New(st store.Store, logger *zap.Logger) *Server {
	return &Server{store: st, logger: logger}
}

// Serve accepts connections on ln until it is closed or returns an error.
// Each accepted connection is handled in its own goroutine and never blocks
// the accept loop.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accepting connection: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	log := s.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Info("connection opened")

	var authed *session.Authed
	state := session.StateUnauth

	for state != session.StateClosed {
		reqType, body, err := wire.ReadRequest(conn)
		if err != nil {
			log.Info("connection ended", zap.Error(err))
			return
		}

		switch reqType {
		case wire.RequestCloseConnection:
			state = session.StateClosed
			log.Info("connection closed by peer request")
			return

		case wire.RequestCreateCompany:
			s.handleCreateCompany(conn, log, body)

		case wire.RequestAuthenticateSession:
			var req wire.AuthenticateRequest
			if err := wire.UnmarshalRequestBody(body, &req); err != nil {
				log.Warn("malformed AuthenticateSession", zap.Error(err))
				return
			}
			ok, err := session.RunServerHandshake(conn, s.store, req)
			if err != nil {
				log.Info("handshake ended", zap.Error(err))
				return
			}
			if ok {
				company, err := s.store.GetCompany(req.CompanyName)
				if err != nil {
					log.Warn("company vanished mid-handshake", zap.Error(err))
					return
				}
				authed = &session.Authed{
					CompanyName: req.CompanyName,
					HMACKey:     company.HMACKey,
				}
				// MasterKey is recovered client-side only; the server never
				// learns it (spec §4.6) and therefore cannot decrypt file
				// bodies or names on behalf of a connection.
				state = session.StateAuthed
				log.Info("session authenticated", zap.String("company", req.CompanyName))
			}

		case wire.RequestUploadFile:
			if !s.requireAuthed(log, state, authed) {
				return
			}
			s.handleUpload(conn, log, authed, body)

		case wire.RequestGetFilenames:
			if !s.requireAuthed(log, state, authed) {
				return
			}
			s.handleGetFilenames(conn, log, authed)

		case wire.RequestDownloadFile:
			if !s.requireAuthed(log, state, authed) {
				return
			}
			s.handleDownload(conn, log, authed, body)

		case wire.RequestRegenerateKey:
			if !s.requireAuthed(log, state, authed) {
				return
			}
			s.handleRegenerateKey(conn, log, authed, body)

		default:
			log.Warn("unknown request type", zap.Stringer("type", reqType))
			return
		}
	}
}

// requireAuthed rejects any file-protocol request arriving outside
// StateAuthed. A caller cannot reach the file handlers with a nil authed
// value unless this check is bypassed, which nothing in this package does.
func (s *Server) requireAuthed(log *zap.Logger, state session.State, authed *session.Authed) bool {
	if state != session.StateAuthed || authed == nil {
		log.Warn("request rejected outside authenticated state", zap.Stringer("state", state))
		return false
	}
	return true
}

// handleCreateCompany persists an already-built Company record (spec §4.5
// "Create" steps 1-4 ran client-side). The server never derives a KEK, never
// wraps a shard, and never sees a password — it only validates the
// record's shape and stores it.
func (s *Server) handleCreateCompany(conn net.Conn, log *zap.Logger, body []byte) {
	var req wire.CreateCompanyRequest
	if err := wire.UnmarshalRequestBody(body, &req); err != nil {
		log.Warn("malformed CreateCompany", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	company := req.Company
	if err := company.Validate(); err != nil {
		log.Info("rejected CreateCompany", zap.String("company", company.Name), zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	if err := s.store.SaveCompany(&company); err != nil {
		log.Warn("failed to persist new company", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	log.Info("company created", zap.String("company", company.Name), zap.Int("users", len(company.Users)))
	_ = wire.WriteStatus(conn, true)
}

func (s *Server) handleUpload(conn net.Conn, log *zap.Logger, authed *session.Authed, body []byte) {
	var req wire.UploadRequest
	if err := wire.UnmarshalRequestBody(body, &req); err != nil {
		log.Warn("malformed UploadFile", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	id, err := s.store.SaveFile(authed.CompanyName, req.EncFile, req.EncName, req.EncFileKey)
	if err != nil {
		log.Warn("failed to save file", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	log.Info("file uploaded", zap.String("company", authed.CompanyName), zap.String("uuid", id))
	_ = wire.WriteStatus(conn, true)
}

func (s *Server) handleGetFilenames(conn net.Conn, log *zap.Logger, authed *session.Authed) {
	files, err := s.store.ListFiles(authed.CompanyName)
	if err != nil {
		log.Warn("failed to list files", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}
	if err := wire.WriteReply(conn, wire.FilenameListing{Files: files}); err != nil {
		log.Info("failed to send filename listing", zap.Error(err))
	}
}

func (s *Server) handleDownload(conn net.Conn, log *zap.Logger, authed *session.Authed, body []byte) {
	var req wire.DownloadRequest
	if err := wire.UnmarshalRequestBody(body, &req); err != nil {
		log.Warn("malformed DownloadFile", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	encFile, encFileKey, err := s.store.GetFile(authed.CompanyName, req.UUID)
	if err != nil {
		if errors.Is(err, vaulterr.ErrNotFound) {
			log.Info("download of unknown file", zap.String("uuid", req.UUID))
		} else {
			log.Warn("failed to load file", zap.Error(err))
		}
		_ = wire.WriteStatus(conn, false)
		return
	}

	if err := wire.WriteReply(conn, wire.DownloadReply{EncFile: encFile, EncFileKey: encFileKey}); err != nil {
		log.Info("failed to send file", zap.Error(err))
	}
}

// handleRegenerateKey persists an already-rebuilt Company record (spec
// §4.5 "Re-key" steps 2-4 ran client-side, using the master/hmac key the
// authenticated session already holds in memory). The server never learns
// a password or the plaintext master key; it only validates the record and
// checks it still belongs to this session's company and still carries this
// session's hmac_key before storing it — preserving hmac_key server-side is
// the documented trust boundary of spec §9's re-key design note, closing
// the compromised-session lockout concern it raises (see DESIGN.md).
func (s *Server) handleRegenerateKey(conn net.Conn, log *zap.Logger, authed *session.Authed, body []byte) {
	var req wire.RegenerateKeyRequest
	if err := wire.UnmarshalRequestBody(body, &req); err != nil {
		log.Warn("malformed RegenerateKey", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	rekeyed := req.Company
	if rekeyed.Name != authed.CompanyName {
		log.Warn("rejected RegenerateKey for foreign company", zap.String("company", rekeyed.Name))
		_ = wire.WriteStatus(conn, false)
		return
	}
	if !hmac.Equal(rekeyed.HMACKey[:], authed.HMACKey[:]) {
		log.Warn("rejected RegenerateKey changing hmac_key", zap.String("company", rekeyed.Name))
		_ = wire.WriteStatus(conn, false)
		return
	}
	if err := rekeyed.Validate(); err != nil {
		log.Info("rejected RegenerateKey", zap.String("company", rekeyed.Name), zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	if err := s.store.SaveCompanyData(&rekeyed); err != nil {
		log.Warn("failed to persist regenerated keys", zap.Error(err))
		_ = wire.WriteStatus(conn, false)
		return
	}

	log.Info("keys regenerated", zap.String("company", rekeyed.Name), zap.Int("users", len(rekeyed.Users)))
	_ = wire.WriteStatus(conn, true)
}
