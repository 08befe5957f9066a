package sokaka

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrInvalidPoint is returned for group elements that are at infinity
	// or outside the prime-order subgroup.
	ErrInvalidPoint = errors.New("sokaka: invalid group element")
	// ErrPairing is returned when the pairing evaluation rejects its
	// inputs.
	ErrPairing = errors.New("sokaka: pairing failed")
	// ErrMasterKeyRange is returned for serialized master keys outside
	// [1, r-1].
	ErrMasterKeyRange = errors.New("sokaka: master key out of range")
)

// Domain-separation tags for the two hash-to-curve maps. Changing either
// changes every identity's key.
var (
	dstG1 = []byte("SOKAKA-V01-CS01-with-BN254G1_XMD:SHA-256_SVDW_RO_")
	dstG2 = []byte("SOKAKA-V01-CS01-with-BN254G2_XMD:SHA-256_SVDW_RO_")
)

// MasterKeyLen is the length of a serialized master key in bytes.
const MasterKeyLen = fr.Bytes

// MasterKey is the authority's secret scalar. It has no derivable
// structure; everything in the scheme hangs off this one value.
type MasterKey struct {
	s *big.Int
}

// GenerateMaster samples a uniform master scalar in [1, r-1].
func GenerateMaster(random io.Reader) (*MasterKey, error) {
	order := fr.Modulus()
	s, err := rand.Int(random, new(big.Int).Sub(order, big.NewInt(1)))
	if err != nil {
		return nil, fmt.Errorf("sokaka: sampling master key: %w", err)
	}
	return &MasterKey{s: s.Add(s, big.NewInt(1))}, nil
}

// NewMasterKeyFromBytes restores a master key serialized with Bytes.
func NewMasterKeyFromBytes(data []byte) (*MasterKey, error) {
	if len(data) != MasterKeyLen {
		return nil, ErrMasterKeyRange
	}
	s := new(big.Int).SetBytes(data)
	if s.Sign() == 0 || s.Cmp(fr.Modulus()) >= 0 {
		return nil, ErrMasterKeyRange
	}
	return &MasterKey{s: s}, nil
}

// Bytes returns the big-endian fixed-length encoding of the master key.
// Handle with the same care as the key itself.
func (m *MasterKey) Bytes() []byte {
	return m.s.FillBytes(make([]byte, MasterKeyLen))
}

// Destroy zeroizes the master scalar in place.
func (m *MasterKey) Destroy() {
	if m.s == nil {
		return
	}
	words := m.s.Bits()
	for i := range words {
		words[i] = 0
	}
	m.s.SetInt64(0)
	m.s = nil
}

// PublicKey is an identity's public key: the identity hashed into both
// pairing groups.
type PublicKey struct {
	g1 bn254.G1Affine
	g2 bn254.G2Affine
}

// DerivePublic maps an identity to its public key. Deterministic: the same
// identity always yields the same points, with no authority involved.
func DerivePublic(identity []byte) (*PublicKey, error) {
	p1, err := bn254.HashToG1(identity, dstG1)
	if err != nil {
		return nil, fmt.Errorf("sokaka: hashing identity to G1: %w", err)
	}
	p2, err := bn254.HashToG2(identity, dstG2)
	if err != nil {
		return nil, fmt.Errorf("sokaka: hashing identity to G2: %w", err)
	}
	return &PublicKey{g1: p1, g2: p2}, nil
}

// Bytes returns the compressed encoding of both components.
func (pub *PublicKey) Bytes() []byte {
	b1 := pub.g1.Bytes()
	b2 := pub.g2.Bytes()
	out := make([]byte, 0, len(b1)+len(b2))
	out = append(out, b1[:]...)
	return append(out, b2[:]...)
}

// NewPublicKeyFromBytes parses a public key serialized with Bytes,
// rejecting encodings outside the prime-order subgroups.
func NewPublicKeyFromBytes(data []byte) (*PublicKey, error) {
	if len(data) != bn254.SizeOfG1AffineCompressed+bn254.SizeOfG2AffineCompressed {
		return nil, ErrInvalidPoint
	}
	pub := &PublicKey{}
	if _, err := pub.g1.SetBytes(data[:bn254.SizeOfG1AffineCompressed]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if _, err := pub.g2.SetBytes(data[bn254.SizeOfG1AffineCompressed:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if err := pub.check(); err != nil {
		return nil, err
	}
	return pub, nil
}

// Equal compares two public keys by their encodings.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	return pub.g1.Equal(&other.g1) && pub.g2.Equal(&other.g2)
}

func (pub *PublicKey) check() error {
	if pub.g1.IsInfinity() || pub.g2.IsInfinity() {
		return ErrInvalidPoint
	}
	if !pub.g1.IsInSubGroup() || !pub.g2.IsInSubGroup() {
		return ErrInvalidPoint
	}
	return nil
}

// PrivateKey is an identity's private key S_id = s·P_id, issued by the
// authority. It carries its own public part, which AgreeKey needs for
// role ordering.
type PrivateKey struct {
	pub PublicKey
	s1  bn254.G1Affine
	s2  bn254.G2Affine
}

// DerivePrivate issues the private key for an identity. Only the holder
// of the master key can do this.
func (m *MasterKey) DerivePrivate(identity []byte) (*PrivateKey, error) {
	if m.s == nil {
		return nil, errors.New("sokaka: master key destroyed")
	}
	pub, err := DerivePublic(identity)
	if err != nil {
		return nil, err
	}
	prv := &PrivateKey{pub: *pub}
	prv.s1.ScalarMultiplication(&pub.g1, m.s)
	prv.s2.ScalarMultiplication(&pub.g2, m.s)
	return prv, nil
}

// PublicKey returns the identity public key embedded in the private key.
func (prv *PrivateKey) PublicKey() *PublicKey {
	pub := prv.pub
	return &pub
}

// SharedKey is the pairing output both parties arrive at. Use DeriveBytes
// to turn it into symmetric key material; never use the raw encoding
// directly.
type SharedKey struct {
	gt bn254.GT
}

// AgreeKey computes the shared key between the holder of self and the
// identity behind peer. The party whose identity point sorts first takes
// the G1 role, so e(P_B, S_A) and e(P_A, S_B) evaluate the same pairing
// and the result is symmetric.
func AgreeKey(peer *PublicKey, self *PrivateKey) (*SharedKey, error) {
	if err := peer.check(); err != nil {
		return nil, err
	}

	selfEnc := self.pub.g1.Bytes()
	peerEnc := peer.g1.Bytes()

	var gt bn254.GT
	var err error
	if bytes.Compare(selfEnc[:], peerEnc[:]) <= 0 {
		gt, err = bn254.Pair([]bn254.G1Affine{self.s1}, []bn254.G2Affine{peer.g2})
	} else {
		gt, err = bn254.Pair([]bn254.G1Affine{peer.g1}, []bn254.G2Affine{self.s2})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPairing, err)
	}
	return &SharedKey{gt: gt}, nil
}

// Bytes returns the canonical encoding of the shared key.
func (k *SharedKey) Bytes() []byte {
	return k.gt.Marshal()
}

// Equal compares two shared keys in constant time.
func (k *SharedKey) Equal(other *SharedKey) bool {
	return subtle.ConstantTimeCompare(k.Bytes(), other.Bytes()) == 1
}

// DeriveBytes expands the shared key into n bytes of symmetric key
// material via HKDF-SHA3-256, bound to the caller-supplied context info.
func (k *SharedKey) DeriveBytes(info []byte, n int) ([]byte, error) {
	r := hkdf.New(sha3.New256, k.Bytes(), nil, info)
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("sokaka: deriving key material: %w", err)
	}
	return out, nil
}
