package ecdsa

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	// ErrInvalidPoint is returned for public keys that are not a valid
	// point on their curve, or are the point at infinity.
	ErrInvalidPoint = errors.New("ecdsa: invalid curve point")
	// ErrPoolExhausted is returned by SignWithPool when no precomputed
	// nonces remain. Refill explicitly with Fill; there is no fallback.
	ErrPoolExhausted = errors.New("ecdsa: nonce pool exhausted")
)

// PublicKey is a point Q = d·G on the curve.
type PublicKey struct {
	Curve elliptic.Curve
	X, Y  *big.Int
}

// Check validates that the key is a finite point on its curve.
func (pub *PublicKey) Check() error {
	if pub.Curve == nil || pub.X == nil || pub.Y == nil {
		return ErrInvalidPoint
	}
	if pub.X.Sign() == 0 && pub.Y.Sign() == 0 {
		return ErrInvalidPoint
	}
	if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
		return ErrInvalidPoint
	}
	return nil
}

// PrivateKey is a scalar d in [1, n-1] together with its public point.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// Destroy zeroizes the private scalar in place.
func (prv *PrivateKey) Destroy() {
	zero(prv.D)
	prv.D = nil
}

// GenerateKey picks a uniform scalar d in [1, n-1] and computes Q = d·G.
// The public point is derived, never assigned.
func GenerateKey(c elliptic.Curve, random io.Reader) (*PrivateKey, error) {
	d, err := randScalar(c, random)
	if err != nil {
		return nil, err
	}
	prv := &PrivateKey{D: d}
	prv.Curve = c
	prv.X, prv.Y = c.ScalarBaseMult(d.Bytes())
	return prv, nil
}

// Sign signs the SHA-256 digest of msg with a fresh nonce. On the
// negligible chance that r or s comes out zero the whole operation
// restarts with a new nonce; the caller only sees the final signature.
func Sign(random io.Reader, prv *PrivateKey, msg []byte) (r, s *big.Int, err error) {
	c := prv.Curve
	n := c.Params().N
	digest := sha256.Sum256(msg)
	e := hashToInt(digest[:], c)

	for {
		k, err := randScalar(c, random)
		if err != nil {
			return nil, nil, err
		}
		kInv := new(big.Int).ModInverse(k, n)
		rx, _ := c.ScalarBaseMult(k.Bytes())
		zero(k)
		if kInv == nil {
			continue
		}
		r = new(big.Int).Mod(rx, n)
		if r.Sign() == 0 {
			continue
		}
		s = signWithNonce(prv, e, kInv, r)
		zero(kInv)
		if s.Sign() == 0 {
			continue
		}
		return r, s, nil
	}
}

// signWithNonce computes s = k⁻¹·(e + r·d) mod n. Shared by the online and
// the pooled signing path so the two variants cannot drift.
func signWithNonce(prv *PrivateKey, e, kInv, r *big.Int) *big.Int {
	n := prv.Curve.Params().N
	s := new(big.Int).Mul(r, prv.D)
	s.Add(s, e)
	s.Mul(s, kInv)
	return s.Mod(s, n)
}

// Verify reports whether (r, s) is a valid signature of msg under pub,
// computing u1·G + u2·Q with two separate scalar multiplications.
func Verify(pub *PublicKey, msg []byte, r, s *big.Int) bool {
	u1, u2, ok := verifySetup(pub, msg, r, s)
	if !ok {
		return false
	}
	c := pub.Curve
	x1, y1 := c.ScalarBaseMult(u1.Bytes())
	x2, y2 := c.ScalarMult(pub.X, pub.Y, u2.Bytes())
	x, y := c.Add(x1, y1, x2, y2)
	return verifyFinish(pub.Curve, r, x, y)
}

// VerifyQuick is Verify computed with Shamir's simultaneous multiplication:
// one interleaved double-and-add pass instead of two full scalar
// multiplications. Same predicate on every input.
func VerifyQuick(pub *PublicKey, msg []byte, r, s *big.Int) bool {
	u1, u2, ok := verifySetup(pub, msg, r, s)
	if !ok {
		return false
	}
	x, y := shamirMult(pub.Curve, u1, u2, pub.X, pub.Y)
	return verifyFinish(pub.Curve, r, x, y)
}

// verifySetup performs the shared validity checks and derives (u1, u2).
// Out-of-range components and invalid public points reject here, before
// any curve arithmetic.
func verifySetup(pub *PublicKey, msg []byte, r, s *big.Int) (u1, u2 *big.Int, ok bool) {
	if pub.Check() != nil {
		return nil, nil, false
	}
	n := pub.Curve.Params().N
	if !inScalarRange(r, n) || !inScalarRange(s, n) {
		return nil, nil, false
	}
	digest := sha256.Sum256(msg)
	e := hashToInt(digest[:], pub.Curve)
	w := new(big.Int).ModInverse(s, n)
	if w == nil {
		return nil, nil, false
	}
	u1 = new(big.Int).Mul(e, w)
	u1.Mod(u1, n)
	u2 = new(big.Int).Mul(r, w)
	u2.Mod(u2, n)
	return u1, u2, true
}

func verifyFinish(c elliptic.Curve, r, x, y *big.Int) bool {
	if x.Sign() == 0 && y.Sign() == 0 {
		return false
	}
	return new(big.Int).Mod(x, c.Params().N).Cmp(r) == 0
}

// shamirMult evaluates u1·G + u2·Q without materializing either product,
// scanning the scalars' bits jointly from the most significant down.
func shamirMult(c elliptic.Curve, u1, u2, qx, qy *big.Int) (*big.Int, *big.Int) {
	params := c.Params()
	sumX, sumY := c.Add(params.Gx, params.Gy, qx, qy)

	x, y := new(big.Int), new(big.Int) // point at infinity
	bits := u1.BitLen()
	if u2.BitLen() > bits {
		bits = u2.BitLen()
	}
	for i := bits - 1; i >= 0; i-- {
		x, y = c.Double(x, y)
		b1, b2 := u1.Bit(i), u2.Bit(i)
		switch {
		case b1 == 1 && b2 == 1:
			x, y = c.Add(x, y, sumX, sumY)
		case b1 == 1:
			x, y = c.Add(x, y, params.Gx, params.Gy)
		case b2 == 1:
			x, y = c.Add(x, y, qx, qy)
		}
	}
	return x, y
}

// randScalar samples a uniform scalar in [1, n-1].
func randScalar(c elliptic.Curve, random io.Reader) (*big.Int, error) {
	n := c.Params().N
	k, err := rand.Int(random, new(big.Int).Sub(n, big.NewInt(1)))
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sampling scalar: %w", err)
	}
	return k.Add(k, big.NewInt(1)), nil
}

func inScalarRange(x, n *big.Int) bool {
	return x != nil && x.Sign() > 0 && x.Cmp(n) < 0
}

// hashToInt converts a digest to an integer of the group's bit size,
// keeping the leftmost bits when the digest is longer than the order.
func hashToInt(hash []byte, c elliptic.Curve) *big.Int {
	orderBits := c.Params().N.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(hash) > orderBytes {
		hash = hash[:orderBytes]
	}
	ret := new(big.Int).SetBytes(hash)
	excess := len(hash)*8 - orderBits
	if excess > 0 {
		ret.Rsh(ret, uint(excess))
	}
	return ret
}

// zero overwrites the words backing x.
func zero(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}
