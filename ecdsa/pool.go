package ecdsa

import (
	"crypto/elliptic"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"
	"sync"

	"go.uber.org/atomic"
)

// NoncePool holds precomputed (k⁻¹, r) pairs for the quick signing path.
// Each entry is consumed by exactly one signature and discarded; sharing
// the pool across goroutines is safe, sharing an entry is impossible.
type NoncePool struct {
	curve elliptic.Curve

	mu      sync.Mutex
	entries []poolEntry

	remaining atomic.Int64
}

type poolEntry struct {
	kInv *big.Int
	r    *big.Int
}

// NewNoncePool creates an empty pool bound to a curve. Call Fill before
// signing.
func NewNoncePool(c elliptic.Curve) *NoncePool {
	return &NoncePool{curve: c}
}

// Fill precomputes size nonce entries. Entries with r = 0 are discarded
// during precomputation, so a drawn entry can only be rejected later by
// the s = 0 check.
func (p *NoncePool) Fill(random io.Reader, size int) error {
	n := p.curve.Params().N
	fresh := make([]poolEntry, 0, size)
	for len(fresh) < size {
		k, err := randScalar(p.curve, random)
		if err != nil {
			return err
		}
		kInv := new(big.Int).ModInverse(k, n)
		rx, _ := p.curve.ScalarBaseMult(k.Bytes())
		zero(k)
		if kInv == nil {
			continue
		}
		r := new(big.Int).Mod(rx, n)
		if r.Sign() == 0 {
			continue
		}
		fresh = append(fresh, poolEntry{kInv: kInv, r: r})
	}

	p.mu.Lock()
	p.entries = append(p.entries, fresh...)
	p.mu.Unlock()
	p.remaining.Add(int64(size))
	return nil
}

// Remaining reports how many precomputed entries are left.
func (p *NoncePool) Remaining() int {
	return int(p.remaining.Load())
}

// Drain zeroizes and discards all unused entries.
func (p *NoncePool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		zero(p.entries[i].kInv)
		p.entries[i] = poolEntry{}
	}
	p.entries = nil
	p.remaining.Store(0)
}

// take removes one entry from the pool.
func (p *NoncePool) take() (poolEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	last := len(p.entries) - 1
	if last < 0 {
		return poolEntry{}, ErrPoolExhausted
	}
	entry := p.entries[last]
	p.entries[last] = poolEntry{}
	p.entries = p.entries[:last]
	p.remaining.Dec()
	return entry, nil
}

// SignWithPool signs the SHA-256 digest of msg using a precomputed nonce.
// Identical algebra to Sign; only the origin of (k⁻¹, r) differs. An empty
// pool yields ErrPoolExhausted.
func SignWithPool(pool *NoncePool, prv *PrivateKey, msg []byte) (r, s *big.Int, err error) {
	if pool.curve != prv.Curve {
		return nil, nil, errors.New("ecdsa: pool curve does not match key curve")
	}
	digest := sha256.Sum256(msg)
	e := hashToInt(digest[:], prv.Curve)

	for {
		entry, err := pool.take()
		if err != nil {
			return nil, nil, err
		}
		s = signWithNonce(prv, e, entry.kInv, entry.r)
		zero(entry.kInv)
		if s.Sign() == 0 {
			// entry is burned either way; draw the next one
			continue
		}
		return entry.r, s, nil
	}
}
