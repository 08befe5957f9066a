// Package ecdsa implements ECDSA signing and verification over any
// elliptic.Curve, which serves as the curve-arithmetic capability boundary:
// the standard P-curves and decred's secp256k1 both satisfy it.
//
// Two equivalent paths exist for each side of the protocol. Sign draws a
// fresh nonce per call; SignWithPool consumes precomputed (k⁻¹, r) entries
// from a NoncePool, moving the scalar multiplication offline. Verify
// evaluates u1·G + u2·Q with two scalar multiplications; VerifyQuick uses
// Shamir's simultaneous-multiplication trick in a single pass. Quick and
// basic variants agree on every input, including malformed ones.
//
// Nonce uniqueness is the load-bearing invariant of this package: a nonce
// reused across two signatures under the same key reveals the private key
// algebraically. Pool entries are therefore consumed exactly once and an
// exhausted pool is a hard error rather than a silent fallback.
package ecdsa
