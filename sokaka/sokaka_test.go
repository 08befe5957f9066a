package sokaka

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgreementSymmetry(t *testing.T) {
	master, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)

	alicePub, err := DerivePublic([]byte("alice@example.com"))
	require.NoError(t, err)
	bobPub, err := DerivePublic([]byte("bob@example.com"))
	require.NoError(t, err)

	alicePrv, err := master.DerivePrivate([]byte("alice@example.com"))
	require.NoError(t, err)
	bobPrv, err := master.DerivePrivate([]byte("bob@example.com"))
	require.NoError(t, err)

	// Alice uses her private key and Bob's public key; Bob does the
	// mirror image. Both must land on the same element.
	aliceKey, err := AgreeKey(bobPub, alicePrv)
	require.NoError(t, err)
	bobKey, err := AgreeKey(alicePub, bobPrv)
	require.NoError(t, err)

	require.True(t, aliceKey.Equal(bobKey),
		"agreement asymmetric: the two sides derived different keys")
	require.Equal(t, aliceKey.Bytes(), bobKey.Bytes())

	// and the derived session material agrees too
	aliceSession, err := aliceKey.DeriveBytes([]byte("session-v1"), 32)
	require.NoError(t, err)
	bobSession, err := bobKey.DeriveBytes([]byte("session-v1"), 32)
	require.NoError(t, err)
	require.Equal(t, aliceSession, bobSession)
	require.Len(t, aliceSession, 32)
}

func TestDistinctPeersDistinctKeys(t *testing.T) {
	master, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)

	alicePrv, err := master.DerivePrivate([]byte("alice"))
	require.NoError(t, err)
	bobPub, err := DerivePublic([]byte("bob"))
	require.NoError(t, err)
	carolPub, err := DerivePublic([]byte("carol"))
	require.NoError(t, err)

	keyAB, err := AgreeKey(bobPub, alicePrv)
	require.NoError(t, err)
	keyAC, err := AgreeKey(carolPub, alicePrv)
	require.NoError(t, err)

	assert.False(t, keyAB.Equal(keyAC), "different peers must not share a key")
}

func TestDistinctMastersDistinctKeys(t *testing.T) {
	m1, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)
	m2, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)

	bobPub, err := DerivePublic([]byte("bob"))
	require.NoError(t, err)

	prv1, err := m1.DerivePrivate([]byte("alice"))
	require.NoError(t, err)
	prv2, err := m2.DerivePrivate([]byte("alice"))
	require.NoError(t, err)

	k1, err := AgreeKey(bobPub, prv1)
	require.NoError(t, err)
	k2, err := AgreeKey(bobPub, prv2)
	require.NoError(t, err)

	assert.False(t, k1.Equal(k2))
}

func TestDerivePublicDeterministic(t *testing.T) {
	a, err := DerivePublic([]byte("alice"))
	require.NoError(t, err)
	b, err := DerivePublic([]byte("alice"))
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Bytes(), b.Bytes())

	c, err := DerivePublic([]byte("alicf"))
	require.NoError(t, err)
	require.False(t, a.Equal(c))
}

func TestSelfAgreement(t *testing.T) {
	master, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)

	pub, err := DerivePublic([]byte("solo"))
	require.NoError(t, err)
	prv, err := master.DerivePrivate([]byte("solo"))
	require.NoError(t, err)

	k1, err := AgreeKey(pub, prv)
	require.NoError(t, err)
	k2, err := AgreeKey(pub, prv)
	require.NoError(t, err)
	require.True(t, k1.Equal(k2))
}

func TestPrivateKeyCarriesPublic(t *testing.T) {
	master, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)

	pub, err := DerivePublic([]byte("dave"))
	require.NoError(t, err)
	prv, err := master.DerivePrivate([]byte("dave"))
	require.NoError(t, err)

	require.True(t, prv.PublicKey().Equal(pub))
}

func TestPublicKeyRoundTrip(t *testing.T) {
	pub, err := DerivePublic([]byte("serialize-me"))
	require.NoError(t, err)

	restored, err := NewPublicKeyFromBytes(pub.Bytes())
	require.NoError(t, err)
	require.True(t, pub.Equal(restored))

	_, err = NewPublicKeyFromBytes(nil)
	require.ErrorIs(t, err, ErrInvalidPoint)

	garbage := make([]byte, len(pub.Bytes()))
	for i := range garbage {
		garbage[i] = 0xff
	}
	_, err = NewPublicKeyFromBytes(garbage)
	require.Error(t, err)
}

func TestMasterKeyRoundTrip(t *testing.T) {
	master, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)

	restored, err := NewMasterKeyFromBytes(master.Bytes())
	require.NoError(t, err)

	prv1, err := master.DerivePrivate([]byte("eve"))
	require.NoError(t, err)
	prv2, err := restored.DerivePrivate([]byte("eve"))
	require.NoError(t, err)

	pub, err := DerivePublic([]byte("frank"))
	require.NoError(t, err)
	k1, err := AgreeKey(pub, prv1)
	require.NoError(t, err)
	k2, err := AgreeKey(pub, prv2)
	require.NoError(t, err)
	require.True(t, k1.Equal(k2))
}

func TestMasterKeyFromBytesRange(t *testing.T) {
	_, err := NewMasterKeyFromBytes(make([]byte, MasterKeyLen))
	require.ErrorIs(t, err, ErrMasterKeyRange)

	_, err = NewMasterKeyFromBytes(make([]byte, MasterKeyLen-1))
	require.ErrorIs(t, err, ErrMasterKeyRange)

	tooBig := make([]byte, MasterKeyLen)
	for i := range tooBig {
		tooBig[i] = 0xff
	}
	_, err = NewMasterKeyFromBytes(tooBig)
	require.ErrorIs(t, err, ErrMasterKeyRange)
}

func TestMasterKeyDestroy(t *testing.T) {
	master, err := GenerateMaster(rand.Reader)
	require.NoError(t, err)
	master.Destroy()

	_, err = master.DerivePrivate([]byte("ghost"))
	require.Error(t, err)
}
