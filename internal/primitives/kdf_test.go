package primitives

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKDFDeterministic(t *testing.T) {
	salt := RandomSalt()
	a := DeriveKey("correct horse battery staple", salt)
	b := DeriveKey("correct horse battery staple", salt)
	require.Equal(t, a, b)
}

func TestKDFSensitiveToInputs(t *testing.T) {
	salt := RandomSalt()
	base := DeriveKey("password-one", salt)

	require.NotEqual(t, base, DeriveKey("password-two", salt))

	otherSalt := RandomSalt()
	otherSalt[0] ^= 0xFF
	require.NotEqual(t, base, DeriveKey("password-one", otherSalt))
}
