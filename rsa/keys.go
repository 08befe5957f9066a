package rsa

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// MinKeyBits is the smallest accepted modulus size. Anything below leaves
// no room for PKCS#1 v1.5 padding, let alone security.
const MinKeyBits = 128

// maxPrimeAttempts bounds how many (p, q) pairs key generation will try
// before giving up.
const maxPrimeAttempts = 64

// defaultE is the fixed public exponent F4 = 2^16 + 1.
const defaultE = 65537

var (
	// ErrKeySize is returned when the requested modulus size is unsupported.
	ErrKeySize = errors.New("rsa: invalid key size")
	// ErrPrimeGeneration is returned when no valid prime pair was found
	// within the bounded number of attempts.
	ErrPrimeGeneration = errors.New("rsa: prime generation failed")
	// ErrNotPrecomputed is returned by the quick path when the private key
	// carries no CRT parameters.
	ErrNotPrecomputed = errors.New("rsa: private key has no CRT parameters")
)

// PublicKey holds the modulus n = pq and the public exponent e.
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// Size returns the modulus size in bytes. Ciphertexts and signatures are
// always exactly this long.
func (pub *PublicKey) Size() int {
	return (pub.N.BitLen() + 7) / 8
}

// PrivateKey holds the private exponent together with the prime factors
// of the modulus. Dp, Dq and Qi are only set on keys produced by
// GenerateKeyQuick or upgraded with Precompute.
type PrivateKey struct {
	PublicKey
	D *big.Int
	P *big.Int
	Q *big.Int

	Dp *big.Int // d mod (p-1)
	Dq *big.Int // d mod (q-1)
	Qi *big.Int // q^-1 mod p
}

// GenerateKey generates an RSA key pair with a modulus of exactly bits
// bits. The returned private key uses the basic (single exponentiation)
// decryption path until Precompute is called on it.
func GenerateKey(random io.Reader, bits int) (*PublicKey, *PrivateKey, error) {
	return genKey(random, bits, false)
}

// GenerateKeyQuick is GenerateKey plus the CRT parameters dp, dq and qi,
// enabling the quick decryption and signing path.
func GenerateKeyQuick(random io.Reader, bits int) (*PublicKey, *PrivateKey, error) {
	return genKey(random, bits, true)
}

func genKey(random io.Reader, bits int, precompute bool) (*PublicKey, *PrivateKey, error) {
	if bits < MinKeyBits || bits%2 != 0 {
		return nil, nil, ErrKeySize
	}

	e := big.NewInt(defaultE)
	one := big.NewInt(1)

	for attempt := 0; attempt < maxPrimeAttempts; attempt++ {
		p, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, nil, fmt.Errorf("rsa: sampling prime: %w", err)
		}
		q, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, nil, fmt.Errorf("rsa: sampling prime: %w", err)
		}
		if p.Cmp(q) == 0 {
			continue
		}

		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}

		pm1 := new(big.Int).Sub(p, one)
		qm1 := new(big.Int).Sub(q, one)
		phi := new(big.Int).Mul(pm1, qm1)

		// gcd(e, phi) = 1 iff e is invertible mod lcm(p-1, q-1)
		if new(big.Int).GCD(nil, nil, e, phi).Cmp(one) != 0 {
			continue
		}

		lambda := new(big.Int).Div(phi, new(big.Int).GCD(nil, nil, pm1, qm1))
		d := new(big.Int).ModInverse(e, lambda)
		if d == nil {
			continue
		}

		prv := &PrivateKey{
			PublicKey: PublicKey{N: n, E: e},
			D:         d,
			P:         p,
			Q:         q,
		}
		if precompute {
			prv.Precompute()
		}
		return &PublicKey{N: n, E: e}, prv, nil
	}

	return nil, nil, ErrPrimeGeneration
}

// Precompute derives the CRT parameters from (d, p, q), switching the key
// to the quick private-key path. Calling it again is a no-op.
func (prv *PrivateKey) Precompute() {
	if prv.Precomputed() {
		return
	}
	one := big.NewInt(1)
	prv.Dp = new(big.Int).Mod(prv.D, new(big.Int).Sub(prv.P, one))
	prv.Dq = new(big.Int).Mod(prv.D, new(big.Int).Sub(prv.Q, one))
	prv.Qi = new(big.Int).ModInverse(prv.Q, prv.P)
}

// Precomputed reports whether the key carries CRT parameters.
func (prv *PrivateKey) Precomputed() bool {
	return prv.Dp != nil && prv.Dq != nil && prv.Qi != nil
}

// Validate checks the structural key invariants: n = pq, e·d = 1 modulo
// lcm(p-1, q-1), and that any CRT parameters are consistent with (d, p, q).
func (prv *PrivateKey) Validate() error {
	one := big.NewInt(1)

	if new(big.Int).Mul(prv.P, prv.Q).Cmp(prv.N) != 0 {
		return errors.New("rsa: modulus is not the product of the recorded primes")
	}

	pm1 := new(big.Int).Sub(prv.P, one)
	qm1 := new(big.Int).Sub(prv.Q, one)
	phi := new(big.Int).Mul(pm1, qm1)
	lambda := new(big.Int).Div(phi, new(big.Int).GCD(nil, nil, pm1, qm1))
	ed := new(big.Int).Mul(prv.E, prv.D)
	if ed.Mod(ed, lambda).Cmp(one) != 0 {
		return errors.New("rsa: private exponent does not invert e")
	}

	if prv.Precomputed() {
		if new(big.Int).Mod(prv.D, pm1).Cmp(prv.Dp) != 0 ||
			new(big.Int).Mod(prv.D, qm1).Cmp(prv.Dq) != 0 {
			return errors.New("rsa: CRT exponents inconsistent with d")
		}
		qi := new(big.Int).Mul(prv.Qi, prv.Q)
		if qi.Mod(qi, prv.P).Cmp(one) != 0 {
			return errors.New("rsa: CRT coefficient inconsistent with p, q")
		}
	}
	return nil
}

// Destroy zeroizes the secret components of the key in place. The key is
// unusable afterwards; the public part is left intact.
func (prv *PrivateKey) Destroy() {
	for _, x := range []*big.Int{prv.D, prv.P, prv.Q, prv.Dp, prv.Dq, prv.Qi} {
		zero(x)
	}
	prv.D, prv.P, prv.Q = nil, nil, nil
	prv.Dp, prv.Dq, prv.Qi = nil, nil, nil
}

// zero overwrites the words backing x before releasing it.
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
