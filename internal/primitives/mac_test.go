package primitives

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMACRoundTrip(t *testing.T) {
	key := RandomKey()
	msg := RandomBytes(64)
	tag := ComputeMAC(key, msg)
	require.NoError(t, VerifyMAC(tag, key, msg))
}

func TestMACRejectsWrongKeyOrMessage(t *testing.T) {
	key := RandomKey()
	msg := RandomBytes(64)
	tag := ComputeMAC(key, msg)

	wrongKey := RandomKey()
	require.ErrorIs(t, VerifyMAC(tag, wrongKey, msg), ErrAuthFailed)

	tampered := append([]byte(nil), msg...)
	tampered[0] ^= 0x01
	require.ErrorIs(t, VerifyMAC(tag, key, tampered), ErrAuthFailed)
}

// TestMACVerifyConstantTime, in the spirit of the teacher's timingAnalysis
// helper (crypto_test.go), times VerifyMAC on an early and a late
// mismatching byte and logs both durations. It asserts nothing about them;
// hmac.Equal's constant-time property is what guarantees VerifyMAC does not
// short-circuit.
func TestMACVerifyConstantTime(t *testing.T) {
	key := RandomKey()
	msg := RandomBytes(64)
	tag := ComputeMAC(key, msg)

	mismatchEarly := tag
	mismatchEarly[0] ^= 0xFF
	mismatchLate := tag
	mismatchLate[len(mismatchLate)-1] ^= 0xFF

	const n = 2000
	timeVerify := func(tag [KeySize]byte) time.Duration {
		start := time.Now()
		for i := 0; i < n; i++ {
			_ = VerifyMAC(tag, key, msg)
		}
		return time.Since(start)
	}

	durEarly := timeVerify(mismatchEarly)
	durLate := timeVerify(mismatchLate)
	t.Logf("early-mismatch: %v, late-mismatch: %v", durEarly, durLate)
}
