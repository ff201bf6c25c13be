package shamir

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/webblitchy/securevault/internal/primitives"
)

func randomSecret(t *testing.T) *[SecretSize]byte {
	t.Helper()
	var secret [SecretSize]byte
	copy(secret[:], primitives.RandomBytes(SecretSize))
	return &secret
}

func TestSplitCombineAnyTwoOfN(t *testing.T) {
	secret := randomSecret(t)
	for n := 2; n <= 8; n++ {
		shards, err := Split(secret, n)
		require.NoError(t, err)
		require.Len(t, shards, n)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				recovered, ok := Combine([]Shard{shards[i], shards[j]})
				require.True(t, ok, "n=%d combining shards %d,%d", n, i, j)
				require.Equal(t, secret, recovered)
			}
		}
	}
}

func TestCombineWithMoreThanTwoConsistentShards(t *testing.T) {
	secret := randomSecret(t)
	shards, err := Split(secret, 5)
	require.NoError(t, err)

	recovered, ok := Combine(shards)
	require.True(t, ok)
	require.Equal(t, secret, recovered)
}

func TestCombineSingleShardFails(t *testing.T) {
	secret := randomSecret(t)
	shards, err := Split(secret, 4)
	require.NoError(t, err)

	_, ok := Combine(shards[:1])
	require.False(t, ok)
}

func TestCombineInconsistentShardsFails(t *testing.T) {
	secretA := randomSecret(t)
	secretB := randomSecret(t)

	shardsA, err := Split(secretA, 3)
	require.NoError(t, err)
	shardsB, err := Split(secretB, 3)
	require.NoError(t, err)

	mixed := []Shard{shardsA[0], shardsA[1], shardsB[2]}
	_, ok := Combine(mixed)
	require.False(t, ok)
}

func TestCombineDuplicatePointFails(t *testing.T) {
	secret := randomSecret(t)
	shards, err := Split(secret, 3)
	require.NoError(t, err)

	_, ok := Combine([]Shard{shards[0], shards[0]})
	require.False(t, ok)
}

func TestSplitRejectsInvalidShareCount(t *testing.T) {
	secret := randomSecret(t)
	_, err := Split(secret, 1)
	require.ErrorIs(t, err, ErrShareCount)
	_, err = Split(secret, 256)
	require.ErrorIs(t, err, ErrShareCount)
}

func TestGF256FieldProperties(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv, ok := gfInv(byte(a))
		require.True(t, ok)
		require.Equal(t, byte(1), gfMul(byte(a), inv))
	}
	_, ok := gfInv(0)
	require.False(t, ok)
}
