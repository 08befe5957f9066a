// Package rsa implements RSA key generation, encryption, decryption and
// signatures, with an optional CRT-accelerated private-key path.
//
// The package deliberately implements only the protocol layer: all
// multiprecision arithmetic (modular exponentiation, modular inverses,
// primality testing) is delegated to math/big and crypto/rand.Prime.
//
// # Variants
//
// Private-key operations come in two equivalent flavors. The basic path
// computes a single full-size exponentiation c^d mod n. The quick path
// splits the work across the prime factors using the Chinese Remainder
// Theorem (two half-size exponentiations recombined with Garner's formula),
// which costs roughly a quarter of the basic path. Keys generated with
// GenerateKeyQuick, or upgraded with Precompute, carry the CRT parameters
// dp, dq and qi; Decrypt and Sign use them automatically, and DecryptBasic
// and DecryptQuick expose both paths so their equivalence stays testable
// in one binary.
//
// # Padding
//
// Encryption uses EME-PKCS1-v1_5 and signatures use EMSA-PKCS1-v1_5 with
// SHA-256. This choice affects interoperability: ciphertexts and signatures
// produced here are compatible with any PKCS#1 v1.5 implementation using
// the same hash. Unpadding after decryption is evaluated without
// secret-dependent branches and reports a single cause-blind ErrDecryption,
// so a caller cannot be turned into a padding oracle by error
// discrimination alone.
//
// # Key material
//
// Private keys own their prime factors. Call Destroy when a key goes out
// of use to zeroize d, p, q and the CRT parameters in place.
package rsa
