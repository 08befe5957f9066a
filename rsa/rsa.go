package rsa

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"
	"math/big"
)

var (
	// ErrMessageTooLong is returned when a plaintext does not fit the
	// modulus together with the minimum padding.
	ErrMessageTooLong = errors.New("rsa: message too long for key size")
	// ErrOutOfRange is returned when a ciphertext is not a canonical
	// encoding of an integer below the modulus.
	ErrOutOfRange = errors.New("rsa: input out of range")
	// ErrDecryption is the single error reported for any padding failure
	// during decryption. It deliberately carries no cause.
	ErrDecryption = errors.New("rsa: decryption error")
)

// Encrypt pads msg with EME-PKCS1-v1_5 and encrypts it to pub. The
// ciphertext is always exactly pub.Size() bytes.
func Encrypt(random io.Reader, pub *PublicKey, msg []byte) ([]byte, error) {
	k := pub.Size()
	em, err := padEncrypt(random, k, msg)
	if err != nil {
		return nil, err
	}
	m := new(big.Int).SetBytes(em)
	if m.Cmp(pub.N) >= 0 {
		return nil, ErrOutOfRange
	}
	c := new(big.Int).Exp(m, pub.E, pub.N)
	return c.FillBytes(make([]byte, k)), nil
}

// Decrypt decrypts ciphertext with prv, using the CRT path when the key
// carries its precomputed parameters and the basic path otherwise.
func Decrypt(prv *PrivateKey, ciphertext []byte) ([]byte, error) {
	if prv.Precomputed() {
		return DecryptQuick(prv, ciphertext)
	}
	return DecryptBasic(prv, ciphertext)
}

// DecryptBasic decrypts with a single full-size exponentiation c^d mod n.
func DecryptBasic(prv *PrivateKey, ciphertext []byte) ([]byte, error) {
	c, err := ciphertextInt(&prv.PublicKey, ciphertext)
	if err != nil {
		return nil, err
	}
	em := expBasic(prv, c).FillBytes(make([]byte, prv.Size()))
	return unpadEncrypt(em)
}

// DecryptQuick decrypts via the CRT: two half-size exponentiations modulo
// p and q, recombined with Garner's formula. Output is bit-identical to
// DecryptBasic for every ciphertext.
func DecryptQuick(prv *PrivateKey, ciphertext []byte) ([]byte, error) {
	if !prv.Precomputed() {
		return nil, ErrNotPrecomputed
	}
	c, err := ciphertextInt(&prv.PublicKey, ciphertext)
	if err != nil {
		return nil, err
	}
	em := expCRT(prv, c).FillBytes(make([]byte, prv.Size()))
	return unpadEncrypt(em)
}

// Sign produces an EMSA-PKCS1-v1_5 signature over the SHA-256 digest of
// msg. Keys with CRT parameters sign via the quick path; the signature is
// identical either way.
func Sign(prv *PrivateKey, msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	em, err := padSign(prv.Size(), digest[:])
	if err != nil {
		return nil, err
	}
	m := new(big.Int).SetBytes(em)
	var sig *big.Int
	if prv.Precomputed() {
		sig = expCRT(prv, m)
	} else {
		sig = expBasic(prv, m)
	}
	return sig.FillBytes(make([]byte, prv.Size())), nil
}

// Verify reports whether sig is a valid signature of msg under pub. An
// invalid signature is an expected outcome, not an error: malformed
// signatures simply yield false.
func Verify(pub *PublicKey, msg, sig []byte) bool {
	k := pub.Size()
	if len(sig) != k {
		return false
	}
	s := new(big.Int).SetBytes(sig)
	if s.Cmp(pub.N) >= 0 {
		return false
	}
	em := new(big.Int).Exp(s, pub.E, pub.N).FillBytes(make([]byte, k))
	digest := sha256.Sum256(msg)
	expected, err := padSign(k, digest[:])
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(em, expected) == 1
}

// ciphertextInt decodes a ciphertext into the integer it represents,
// rejecting anything that is not exactly k bytes of a value below n.
func ciphertextInt(pub *PublicKey, ciphertext []byte) (*big.Int, error) {
	if len(ciphertext) != pub.Size() {
		return nil, ErrOutOfRange
	}
	c := new(big.Int).SetBytes(ciphertext)
	if c.Cmp(pub.N) >= 0 {
		return nil, ErrOutOfRange
	}
	return c, nil
}

func expBasic(prv *PrivateKey, c *big.Int) *big.Int {
	return new(big.Int).Exp(c, prv.D, prv.N)
}

func expCRT(prv *PrivateKey, c *big.Int) *big.Int {
	m1 := new(big.Int).Exp(c, prv.Dp, prv.P)
	m2 := new(big.Int).Exp(c, prv.Dq, prv.Q)
	h := new(big.Int).Sub(m1, m2)
	h.Mul(h, prv.Qi)
	h.Mod(h, prv.P)
	m := h.Mul(h, prv.Q)
	return m.Add(m, m2)
}
