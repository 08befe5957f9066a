package ecdsa

import (
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSigningMatchesOnline(t *testing.T) {
	curve := elliptic.P256()
	prv, err := GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	pool := NewNoncePool(curve)
	require.NoError(t, pool.Fill(rand.Reader, 8))
	require.Equal(t, 8, pool.Remaining())

	for i := 0; i < 8; i++ {
		msg := []byte{byte(i), 0xaa}
		r, s, err := SignWithPool(pool, prv, msg)
		require.NoError(t, err)
		assert.True(t, Verify(&prv.PublicKey, msg, r, s))
		assert.True(t, VerifyQuick(&prv.PublicKey, msg, r, s))
	}
	require.Equal(t, 0, pool.Remaining())
}

func TestPoolExhaustionIsHardError(t *testing.T) {
	curve := elliptic.P256()
	prv, err := GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	pool := NewNoncePool(curve)
	require.NoError(t, pool.Fill(rand.Reader, 1))

	_, _, err = SignWithPool(pool, prv, []byte("one"))
	require.NoError(t, err)

	// no silent fallback to online nonce generation
	_, _, err = SignWithPool(pool, prv, []byte("two"))
	require.ErrorIs(t, err, ErrPoolExhausted)

	// explicit refill restores the path
	require.NoError(t, pool.Fill(rand.Reader, 2))
	require.Equal(t, 2, pool.Remaining())
	_, _, err = SignWithPool(pool, prv, []byte("three"))
	require.NoError(t, err)
}

func TestPoolEntriesAreExactlyOnce(t *testing.T) {
	curve := elliptic.P256()
	prv, err := GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	pool := NewNoncePool(curve)
	require.NoError(t, pool.Fill(rand.Reader, 16))

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		r, _, err := SignWithPool(pool, prv, []byte{byte(i)})
		require.NoError(t, err)
		require.False(t, seen[r.String()], "pool entry consumed twice")
		seen[r.String()] = true
	}
}

func TestPoolConcurrentConsumption(t *testing.T) {
	curve := elliptic.P256()
	prv, err := GenerateKey(curve, rand.Reader)
	require.NoError(t, err)

	const workers = 4
	const perWorker = 8
	pool := NewNoncePool(curve)
	require.NoError(t, pool.Fill(rand.Reader, workers*perWorker))

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				msg := []byte{byte(w), byte(i)}
				r, s, err := SignWithPool(pool, prv, msg)
				assert.NoError(t, err)
				assert.True(t, Verify(&prv.PublicKey, msg, r, s))
				mu.Lock()
				assert.False(t, seen[r.String()], "nonce shared across goroutines")
				seen[r.String()] = true
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	require.Equal(t, 0, pool.Remaining())
}

func TestPoolCurveMismatch(t *testing.T) {
	prv, err := GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pool := NewNoncePool(elliptic.P384())
	require.NoError(t, pool.Fill(rand.Reader, 1))

	_, _, err = SignWithPool(pool, prv, []byte("mismatch"))
	require.Error(t, err)
	require.Equal(t, 1, pool.Remaining())
}

func TestPoolDrain(t *testing.T) {
	pool := NewNoncePool(elliptic.P256())
	require.NoError(t, pool.Fill(rand.Reader, 4))
	pool.Drain()
	require.Equal(t, 0, pool.Remaining())

	prv, err := GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	_, _, err = SignWithPool(pool, prv, []byte("drained"))
	require.ErrorIs(t, err, ErrPoolExhausted)
}
