// Package session implements the four-message handshake of spec §4.6 on
// top of the framed wire protocol, and the typed connection states spec §9
// recommends in place of the reference implementation's single mutable
// Company value: Unauth, Authed, and Closed. There is no separate Challenged
// state value: the server's challenge/response exchange runs to completion
// inside RunServerHandshake, and the connection stays Unauth until that call
// reports success.
package session

import (
	"fmt"
	"io"

	"github.com/webblitchy/securevault/internal/primitives"
	"github.com/webblitchy/securevault/internal/vault"
	"github.com/webblitchy/securevault/internal/vaulterr"
	"github.com/webblitchy/securevault/internal/wire"
)

// State is a connection's position in the handshake state machine.
type State int

const (
	StateUnauth State = iota
	StateAuthed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauth:
		return "Unauth"
	case StateAuthed:
		return "Authed"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Authed holds the key material a connection gains on a successful
// handshake: the master key (for file envelopes) and the HMAC key (reused
// on re-key, so it is never re-derived). On the client it comes from
// RunClientHandshake; the server builds its own Authed, without a master
// key, after RunServerHandshake reports success. The fields are exported,
// so holding an Authed is not by itself proof of a handshake; the server's
// dispatch loop also checks its connection state before file operations.
type Authed struct {
	CompanyName string
	MasterKey   [primitives.KeySize]byte
	HMACKey     [primitives.KeySize]byte
}

// CompanyStore is the subset of internal/store the handshake needs on the
// server side: looking a company up by name.
type CompanyStore interface {
	GetCompany(name string) (*vault.Company, error)
}

// RunClientHandshake drives the client side of spec §4.6 steps 1, 3, 5 over
// conn, given the two (username, password) pairs the caller collected.
// It returns the authenticated session key material, or an error wrapping
// vaulterr.ErrAuthFailed on any of the indistinguishable failure paths.
func RunClientHandshake(conn io.ReadWriter, companyName, userA, userB, passwordA, passwordB string) (*Authed, error) {
	err := wire.WriteRequest(conn, wire.RequestAuthenticateSession, wire.AuthenticateRequest{
		CompanyName: companyName,
		UserA:       userA,
		UserB:       userB,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sending AuthenticateSession: %v", vaulterr.ErrTransientIO, err)
	}

	frame, isKO, err := wire.ReadStatusOrFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: reading challenge: %v", vaulterr.ErrTransientIO, err)
	}
	if isKO {
		return nil, vaulterr.ErrAuthFailed
	}

	var challenge wire.AuthChallenge
	if err := wire.UnmarshalRequestBody(frame, &challenge); err != nil {
		return nil, fmt.Errorf("%w: decoding challenge: %v", vaulterr.ErrProtocol, err)
	}

	groupKey, ok := vault.BuildGroupKey([]vault.Credential{
		{User: challenge.UserA, Password: passwordA},
		{User: challenge.UserB, Password: passwordB},
	})
	if !ok {
		return nil, vaulterr.ErrAuthFailed
	}
	masterKEK, hmacKEK := primitives.DeriveWrappingKeys(groupKey)

	rawHMACKey, err := primitives.Decrypt(challenge.HMACKeyEncrypted, &hmacKEK)
	if err != nil || len(rawHMACKey) != primitives.KeySize {
		return nil, vaulterr.ErrAuthFailed
	}
	var hmacKey [primitives.KeySize]byte
	copy(hmacKey[:], rawHMACKey)

	tag := primitives.ComputeMAC(hmacKey, challenge.Random[:])
	if err := wire.WriteReply(conn, wire.AuthTag{Tag: tag}); err != nil {
		return nil, fmt.Errorf("%w: sending auth tag: %v", vaulterr.ErrTransientIO, err)
	}

	frame, isKO, err = wire.ReadStatusOrFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: reading final reply: %v", vaulterr.ErrTransientIO, err)
	}
	if isKO {
		return nil, vaulterr.ErrAuthFailed
	}

	var masterKeyEncrypted primitives.EncryptedBox
	if err := wire.UnmarshalRequestBody(frame, &masterKeyEncrypted); err != nil {
		return nil, fmt.Errorf("%w: decoding wrapped master key: %v", vaulterr.ErrProtocol, err)
	}
	rawMasterKey, err := primitives.Decrypt(masterKeyEncrypted, &masterKEK)
	if err != nil || len(rawMasterKey) != primitives.KeySize {
		return nil, vaulterr.ErrAuthFailed
	}
	var masterKey [primitives.KeySize]byte
	copy(masterKey[:], rawMasterKey)

	return &Authed{CompanyName: companyName, MasterKey: masterKey, HMACKey: hmacKey}, nil
}

// RunServerHandshake drives the server side of spec §4.6 steps 2, 4 over
// conn, given the already-decoded AuthenticateRequest. It reports whether
// the handshake succeeded, and returns a non-nil error only when the
// connection itself failed; callers should transition the connection to
// StateAuthed only when ok is true.
func RunServerHandshake(conn io.ReadWriter, store CompanyStore, req wire.AuthenticateRequest) (ok bool, err error) {
	company, err := store.GetCompany(req.CompanyName)
	if err != nil {
		if statusErr := wire.WriteStatus(conn, false); statusErr != nil {
			return false, fmt.Errorf("%w: %v", vaulterr.ErrTransientIO, statusErr)
		}
		return false, nil
	}

	userA, okA := company.UserByName(req.UserA)
	userB, okB := company.UserByName(req.UserB)
	if !okA || !okB {
		if statusErr := wire.WriteStatus(conn, false); statusErr != nil {
			return false, fmt.Errorf("%w: %v", vaulterr.ErrTransientIO, statusErr)
		}
		return false, nil
	}

	var random [64]byte
	copy(random[:], primitives.RandomBytes(64))

	challenge := wire.AuthChallenge{
		UserA:            userA,
		UserB:            userB,
		Random:           random,
		HMACKeyEncrypted: company.HMACKeyEncrypted,
	}
	if err := wire.WriteReply(conn, challenge); err != nil {
		return false, fmt.Errorf("%w: sending challenge: %v", vaulterr.ErrTransientIO, err)
	}

	var clientTag wire.AuthTag
	if err := wire.ReadReply(conn, &clientTag); err != nil {
		return false, fmt.Errorf("%w: reading auth tag: %v", vaulterr.ErrTransientIO, err)
	}

	if err := primitives.VerifyMAC(clientTag.Tag, company.HMACKey, random[:]); err != nil {
		return false, wire.WriteStatus(conn, false)
	}

	if err := wire.WriteReply(conn, company.MasterKeyEncrypted); err != nil {
		return false, fmt.Errorf("%w: sending wrapped master key: %v", vaulterr.ErrTransientIO, err)
	}
	return true, nil
}
