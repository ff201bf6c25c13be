// Package wire implements the on-the-wire request/reply encoding described
// in spec §6: a compact binary serialization with fixed-width integers and
// length-prefixed sequences, carried over length-prefixed frames instead of
// the reference implementation's 64-byte short-read heuristic (spec §9).
package wire

import (
	"bytes"
	"fmt"
	"io"

	xdr "github.com/davecgh/go-xdr/xdr2"
)

// RequestType tags every client-to-server message (spec §3).
type RequestType uint8

const (
	RequestCloseConnection RequestType = iota
	RequestCreateCompany
	RequestAuthenticateSession
	RequestUploadFile
	RequestGetFilenames
	RequestDownloadFile
	RequestRegenerateKey
)

func (t RequestType) String() string {
	switch t {
	case RequestCloseConnection:
		return "CloseConnection"
	case RequestCreateCompany:
		return "CreateCompany"
	case RequestAuthenticateSession:
		return "AuthenticateSession"
	case RequestUploadFile:
		return "UploadFile"
	case RequestGetFilenames:
		return "GetFilenames"
	case RequestDownloadFile:
		return "DownloadFile"
	case RequestRegenerateKey:
		return "RegenerateKey"
	default:
		return fmt.Sprintf("RequestType(%d)", uint8(t))
	}
}

// Short status replies, exactly as spec §6 names them.
var (
	StatusOK = []byte("OK")
	StatusKO = []byte("KO")
)

// WriteRequest XDR-marshals body (nil for an empty payload), appends the
// request-type tag byte — "serialize(payload) ++ [request_type_byte]" per
// spec §6 — and sends the result as one length-prefixed frame.
func WriteRequest(w io.Writer, reqType RequestType, body interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if _, err := xdr.Marshal(&buf, body); err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}
	buf.WriteByte(byte(reqType))
	return WriteFrame(w, buf.Bytes())
}

// ReadRequest reads one frame and splits off its trailing request-type tag.
// The returned body still needs an xdr.Unmarshal into the request-specific
// struct by the caller, who knows reqType and therefore the expected shape.
func ReadRequest(r io.Reader) (reqType RequestType, body []byte, err error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return 0, nil, err
	}
	if len(frame) == 0 {
		return 0, nil, fmt.Errorf("%w: empty request frame", ErrProtocol)
	}
	reqType = RequestType(frame[len(frame)-1])
	return reqType, frame[:len(frame)-1], nil
}

// UnmarshalRequestBody decodes a request body previously split off by
// ReadRequest into the request-specific struct v.
func UnmarshalRequestBody(body []byte, v interface{}) error {
	if _, err := xdr.Unmarshal(bytes.NewReader(body), v); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

// WriteReply XDR-marshals body and sends it as a raw framed payload (no
// trailing tag — only requests carry one).
func WriteReply(w io.Writer, body interface{}) error {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, body); err != nil {
		return fmt.Errorf("marshaling reply body: %w", err)
	}
	return WriteFrame(w, buf.Bytes())
}

// WriteStatus sends one of the two short status replies.
func WriteStatus(w io.Writer, ok bool) error {
	if ok {
		return WriteFrame(w, StatusOK)
	}
	return WriteFrame(w, StatusKO)
}

// ReadReply reads one framed reply and unmarshals it into v.
func ReadReply(r io.Reader, v interface{}) error {
	frame, err := ReadFrame(r)
	if err != nil {
		return err
	}
	if _, err := xdr.Unmarshal(bytes.NewReader(frame), v); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

// ReadStatusOrFrame reads one frame and reports whether it was exactly the
// "KO" status. Use this where a reply is either a short status or a
// meaningful payload (e.g. AuthenticateSession's challenge).
func ReadStatusOrFrame(r io.Reader) (frame []byte, isKO bool, err error) {
	frame, err = ReadFrame(r)
	if err != nil {
		return nil, false, err
	}
	return frame, bytes.Equal(frame, StatusKO), nil
}
