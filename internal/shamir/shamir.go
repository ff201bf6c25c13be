// Package shamir implements a 2-of-N Shamir secret-sharing split and combine
// over a fixed-size 64-byte secret, operating byte-wise in GF(2^8).
//
// This mirrors the original implementation's use of the `shamirsecretsharing`
// crate (a byte-oriented, libsodium-backed scheme: see
// original_source/secure_cloud_client/src/shamir.rs), not a group-scalar
// scheme: each of the secret's 64 bytes is independently split into a
// degree-1 polynomial over GF(2^8), evaluated at N distinct nonzero points.
// Combine requires only two of those points (2-of-N regardless of N) and
// recovers the polynomial's constant term via Lagrange interpolation.
package shamir

import (
	"errors"

	"github.com/webblitchy/securevault/internal/primitives"
)

// SecretSize is the fixed width of the grouped-shards secret.
const SecretSize = 64

// MaxShares is the largest share count supported: GF(2^8) has only 255
// nonzero points, and x=0 is reserved for the secret itself.
const MaxShares = 255

// ErrShareCount is returned when n is outside [2, MaxShares].
var ErrShareCount = errors.New("shamir: share count must be between 2 and 255")

// Shard is one participant's share of a Split. Byte 0 is the share's x
// coordinate (1..n); the remaining SecretSize bytes are the evaluations of
// each of the 64 independent polynomials at that x.
type Shard []byte

// Split produces n shards of secret, a 2-of-n scheme: any two distinct
// shards returned here can reconstruct secret via Combine.
func Split(secret *[SecretSize]byte, n int) ([]Shard, error) {
	if n < 2 || n > MaxShares {
		return nil, ErrShareCount
	}

	// One random degree-1 coefficient per secret byte: f_i(x) = secret[i] + a_i*x.
	coeffs := primitives.RandomBytes(SecretSize)

	shards := make([]Shard, n)
	for i := 0; i < n; i++ {
		x := byte(i + 1) // x=0 is reserved for the secret
		shard := make(Shard, 1+SecretSize)
		shard[0] = x
		for b := 0; b < SecretSize; b++ {
			shard[1+b] = gfAdd(secret[b], gfMul(coeffs[b], x))
		}
		shards[i] = shard
	}
	return shards, nil
}

// Combine reconstructs the 64-byte secret from two or more shards. Extra
// shards beyond the first two must agree with them or Combine returns
// (nil, false) rather than a silently wrong result; it never panics on
// malformed input.
func Combine(shards []Shard) (*[SecretSize]byte, bool) {
	if len(shards) < 2 {
		return nil, false
	}
	for _, s := range shards {
		if len(s) != 1+SecretSize {
			return nil, false
		}
	}

	x0, y0 := shards[0][0], shards[0][1:]
	x1, y1 := shards[1][0], shards[1][1:]
	if x0 == x1 {
		return nil, false // degenerate: same point can't determine a line
	}

	var secret [SecretSize]byte
	for b := 0; b < SecretSize; b++ {
		v, ok := interpolateAtZero(x0, y0[b], x1, y1[b])
		if !ok {
			return nil, false
		}
		secret[b] = v
	}

	// Any additional shards must be consistent with the line determined by
	// the first two, or the input was not a valid split of one secret.
	for _, s := range shards[2:] {
		x, y := s[0], s[1:]
		for b := 0; b < SecretSize; b++ {
			want := evalAt(x0, y0[b], x1, y1[b], x)
			if want != y[b] {
				return nil, false
			}
		}
	}

	return &secret, true
}

// interpolateAtZero returns the Lagrange interpolation of the line through
// (x0,y0) and (x1,y1) evaluated at x=0, i.e. the polynomial's constant term.
func interpolateAtZero(x0, y0, x1, y1 byte) (byte, bool) {
	if x0 == x1 {
		return 0, false
	}
	// L0(0) = x1/(x1-x0), L1(0) = x0/(x0-x1) = x0/(x1-x0) (GF(2^8): a-b == a+b)
	denom := gfAdd(x1, x0)
	denomInv, ok := gfInv(denom)
	if !ok {
		return 0, false
	}
	l0 := gfMul(x1, denomInv)
	l1 := gfMul(x0, denomInv)
	return gfAdd(gfMul(y0, l0), gfMul(y1, l1)), true
}

// evalAt evaluates, at point x, the same degree-1 polynomial determined by
// (x0,y0) and (x1,y1).
func evalAt(x0, y0, x1, y1, x byte) byte {
	if x == x0 {
		return y0
	}
	if x == x1 {
		return y1
	}
	denom := gfAdd(x1, x0)
	denomInv, ok := gfInv(denom)
	if !ok {
		return 0
	}
	// slope-free Lagrange form evaluated at arbitrary x.
	lx0 := gfMul(gfAdd(x, x1), denomInv)
	lx1 := gfMul(gfAdd(x, x0), denomInv)
	return gfAdd(gfMul(y0, lx0), gfMul(y1, lx1))
}
