package rsa

import (
	"crypto/subtle"
	"io"
)

// EME-PKCS1-v1_5 encoding: 00 02 PS 00 M with PS at least eight nonzero
// random bytes. The leading zero byte keeps the encoded integer below the
// modulus for any k-byte modulus.
func padEncrypt(random io.Reader, k int, msg []byte) ([]byte, error) {
	if len(msg) > k-11 {
		return nil, ErrMessageTooLong
	}
	em := make([]byte, k)
	em[1] = 2
	ps := em[2 : k-len(msg)-1]
	if err := nonZeroRandomBytes(random, ps); err != nil {
		return nil, err
	}
	copy(em[k-len(msg):], msg)
	return em, nil
}

// nonZeroRandomBytes fills b with uniform nonzero bytes.
func nonZeroRandomBytes(random io.Reader, b []byte) error {
	if _, err := io.ReadFull(random, b); err != nil {
		return err
	}
	for i := range b {
		for b[i] == 0 {
			if _, err := io.ReadFull(random, b[i:i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}

// unpadEncrypt validates and strips EME-PKCS1-v1_5 padding. All checks are
// accumulated without secret-dependent branches and collapse into a single
// cause-blind ErrDecryption, so which check failed is not observable.
func unpadEncrypt(em []byte) ([]byte, error) {
	if len(em) < 11 {
		return nil, ErrDecryption
	}

	firstByteIsZero := subtle.ConstantTimeByteEq(em[0], 0)
	secondByteIsTwo := subtle.ConstantTimeByteEq(em[1], 2)

	// Locate the 00 separator after the padding string without leaking
	// its position through control flow.
	lookingForIndex := 1
	index := 0
	for i := 2; i < len(em); i++ {
		equals0 := subtle.ConstantTimeByteEq(em[i], 0)
		index = subtle.ConstantTimeSelect(lookingForIndex&equals0, i, index)
		lookingForIndex = subtle.ConstantTimeSelect(equals0, 0, lookingForIndex)
	}

	// The padding string must span at least eight bytes.
	validPS := subtle.ConstantTimeLessOrEq(2+8, index)

	valid := firstByteIsZero & secondByteIsTwo & (^lookingForIndex & 1) & validPS
	if valid != 1 {
		return nil, ErrDecryption
	}
	return em[index+1:], nil
}

// DER DigestInfo prefix for SHA-256 (RFC 8017, section 9.2).
var sha256Prefix = []byte{
	0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01,
	0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20,
}

// EMSA-PKCS1-v1_5 encoding: 00 01 FF..FF 00 DigestInfo || H. Deterministic,
// so sign-then-compare verification can use a plain constant-time equality.
func padSign(k int, digest []byte) ([]byte, error) {
	t := len(sha256Prefix) + len(digest)
	if k < t+11 {
		return nil, ErrKeySize
	}
	em := make([]byte, k)
	em[1] = 1
	for i := 2; i < k-t-1; i++ {
		em[i] = 0xff
	}
	copy(em[k-t:], sha256Prefix)
	copy(em[k-len(digest):], digest)
	return em, nil
}
