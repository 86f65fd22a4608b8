package crypto_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherlink/internal/crypto"
	"cipherlink/internal/domain"
)

func newKeys(t *testing.T, h *crypto.Hybrid) domain.KeyPair {
	t.Helper()
	kp, err := h.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func TestPublicKeyRoundTrip(t *testing.T) {
	h := crypto.NewHybrid()
	kp := newKeys(t, h)

	s := h.SerializePublicKey(kp.Public())
	pub, err := h.DeserializePublicKey(s)
	require.NoError(t, err)
	assert.Equal(t, kp.Public(), pub)
	assert.Len(t, string(crypto.Fingerprint(pub)), 20)
}

func TestDeserializePublicKeyRejectsGarbage(t *testing.T) {
	h := crypto.NewHybrid()
	for _, in := range []string{
		"not base64!",
		crypto.B64([]byte("short")),
		crypto.B64(make([]byte, crypto.PublicKeySize)),
		"",
	} {
		_, err := h.DeserializePublicKey(in)
		assert.ErrorIs(t, err, domain.ErrInvalidKeyFormat, in)
	}
}

func TestAsymmetricRoundTrip(t *testing.T) {
	h := crypto.NewHybrid()
	bob := newKeys(t, h)
	eve := newKeys(t, h)

	sealed, err := h.AsymmetricEncrypt(bob.Public(), []byte("session key material"))
	require.NoError(t, err)

	pt, err := h.AsymmetricDecrypt(bob, sealed)
	require.NoError(t, err)
	assert.Equal(t, "session key material", string(pt))

	_, err = h.AsymmetricDecrypt(eve, sealed)
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)

	_, err = h.AsymmetricDecrypt(bob, sealed[:10])
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)
}

func TestSignVerify(t *testing.T) {
	h := crypto.NewHybrid()
	alice := newKeys(t, h)
	bob := newKeys(t, h)

	sig := h.Sign(alice, []byte("hello"))
	require.NoError(t, h.Verify(alice.Public(), []byte("hello"), sig))
	assert.ErrorIs(t, h.Verify(alice.Public(), []byte("hellO"), sig), domain.ErrInvalidSignature)
	assert.ErrorIs(t, h.Verify(bob.Public(), []byte("hello"), sig), domain.ErrInvalidSignature)
	assert.ErrorIs(t, h.Verify(alice.Public(), []byte("hello"), sig[:10]), domain.ErrInvalidSignature)
}

func TestSymmetricRoundTripAndTamper(t *testing.T) {
	h := crypto.NewHybrid()
	key, err := h.GenerateSymmetricKey()
	require.NoError(t, err)
	other, err := h.GenerateSymmetricKey()
	require.NoError(t, err)
	require.NotEqual(t, key, other)

	ct, err := h.SymmetricEncrypt(key, []byte("hello"))
	require.NoError(t, err)
	pt, err := h.SymmetricDecrypt(key, ct)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(pt))

	_, err = h.SymmetricDecrypt(other, ct)
	assert.ErrorIs(t, err, domain.ErrDecryptionFailed)

	raw, err := crypto.UnB64(ct)
	require.NoError(t, err)
	for i := range raw {
		flipped := append([]byte(nil), raw...)
		flipped[i] ^= 0x01
		_, err := h.SymmetricDecrypt(key, crypto.B64(flipped))
		require.ErrorIs(t, err, domain.ErrDecryptionFailed, "byte %d", i)
	}

	for _, bad := range []string{"%%%", crypto.B64([]byte("tiny")), strings.Repeat("A", 3)} {
		_, err := h.SymmetricDecrypt(key, bad)
		assert.ErrorIs(t, err, domain.ErrDecryptionFailed, bad)
	}
}

func TestCiphertextsDiffer(t *testing.T) {
	h := crypto.NewHybrid()
	key, err := h.GenerateSymmetricKey()
	require.NoError(t, err)
	a, err := h.SymmetricEncrypt(key, []byte("same"))
	require.NoError(t, err)
	b, err := h.SymmetricEncrypt(key, []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
