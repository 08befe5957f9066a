// Package sokaka implements the Sakai-Ohgishi-Kasahara identity-based
// non-interactive key agreement protocol.
//
// A trusted authority holds a master scalar s. Any identity string maps
// deterministically to a public key P_id by hashing to the curve, and the
// authority issues the matching private key S_id = s·P_id. Two parties then
// derive the same shared key with no interaction at all: by bilinearity,
// e(P_B, S_A) = e(P_A, P_B)^s = e(P_A, S_B).
//
// The pairing collaborator is BN254 (gnark-crypto). BN254 is a type-3
// pairing, so identity keys carry both a G1 and a G2 component and AgreeKey
// fixes each party's group role by the canonical order of the two G1
// encodings; both sides end up evaluating the same pairing. The shared key
// is an element of the target group, and must always be fed through
// DeriveBytes before use as symmetric key material.
package sokaka
