// Package vaulterr names the sentinel errors of the taxonomy in spec §7, so
// that every layer can wrap a lower-level failure with fmt.Errorf("...: %w")
// while callers still classify it with errors.Is.
package vaulterr

import "errors"

var (
	// ErrAuthFailed covers every cryptographic authentication failure: AEAD
	// tag mismatch, wrong password, missing user, shard-combine failure, bad
	// MAC. Callers must never report which sub-cause triggered it.
	ErrAuthFailed = errors.New("bad company / usernames / passwords")

	// ErrProtocol covers an unknown request tag, a truncated message, or an
	// unexpected reply shape. The connection is not salvageable.
	ErrProtocol = errors.New("protocol error")

	// ErrStorage covers an I/O failure reading or writing the persisted
	// store.
	ErrStorage = errors.New("storage error")

	// ErrTransientIO covers a socket read/write failure mid-session; the
	// caller may retry with a new session.
	ErrTransientIO = errors.New("transient connection error")

	// ErrNotFound covers a lookup (company, user, file) that found nothing.
	ErrNotFound = errors.New("not found")
)
