package session_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherlink/internal/crypto"
	"cipherlink/internal/domain"
	"cipherlink/internal/envelope"
	"cipherlink/internal/protocol/handshake"
	"cipherlink/internal/services/session"
)

const joined = "SYSTEM:" + envelope.PeerJoined

func newPair(t *testing.T, opts session.Options) (alice, bob *session.Service) {
	t.Helper()
	var err error
	alice, err = session.New("alice", "bob", crypto.NewHybrid(), opts, nil)
	require.NoError(t, err)
	bob, err = session.New("bob", "alice", crypto.NewHybrid(), opts, nil)
	require.NoError(t, err)
	return alice, bob
}

// pump delivers envelopes from one side to the other until both go quiet.
func pump(t *testing.T, a, b *session.Service, fromA, fromB []envelope.Envelope) {
	t.Helper()
	for len(fromA) > 0 || len(fromB) > 0 {
		var nextA, nextB []envelope.Envelope
		for _, env := range fromA {
			in, err := b.Receive(env.Encode())
			require.NoError(t, err)
			nextB = append(nextB, in.Outgoing...)
		}
		for _, env := range fromB {
			in, err := a.Receive(env.Encode())
			require.NoError(t, err)
			nextA = append(nextA, in.Outgoing...)
		}
		fromA, fromB = nextA, nextB
	}
}

func establish(t *testing.T, alice, bob *session.Service) {
	t.Helper()
	inA, err := alice.Receive(joined)
	require.NoError(t, err)
	inB, err := bob.Receive(joined)
	require.NoError(t, err)
	pump(t, alice, bob, inA.Outgoing, inB.Outgoing)
	require.True(t, alice.Established())
	require.True(t, bob.Established())
}

func TestAliceBobScenario(t *testing.T) {
	alice, bob := newPair(t, session.Options{})

	inA, err := alice.Receive(joined)
	require.NoError(t, err)
	assert.Contains(t, inA.Notice, "bob joined")
	require.Len(t, inA.Outgoing, 1)
	assert.Equal(t, envelope.KeyExchange, inA.Outgoing[0].Tag)

	inB, err := bob.Receive(joined)
	require.NoError(t, err)

	// Bob learns Alice's key and, being the generator, sends SESSION_KEY.
	got, err := bob.Receive(inA.Outgoing[0].Encode())
	require.NoError(t, err)
	require.Len(t, got.Outgoing, 1)
	assert.Equal(t, envelope.SessionKey, got.Outgoing[0].Tag)
	assert.True(t, got.Established)
	wire := got.Outgoing[0].Encode()
	assert.Regexp(t, `^SESSION_KEY:[A-Za-z0-9+/=]+$`, wire)

	_, err = alice.Receive(inB.Outgoing[0].Encode())
	require.NoError(t, err)
	got, err = alice.Receive(wire)
	require.NoError(t, err)
	assert.True(t, got.Established)
	assert.Equal(t, handshake.KeyEstablished, alice.Handshake().State())

	env, err := alice.EncryptOutgoing("hello")
	require.NoError(t, err)
	assert.Regexp(t, `^AES:[A-Za-z0-9+/=]+$`, env.Encode())

	in, err := bob.Receive(env.Encode())
	require.NoError(t, err)
	require.NotNil(t, in.Message)
	assert.Equal(t, "hello", in.Message.Text)
	assert.Equal(t, domain.Username("alice"), in.Message.From)
	assert.True(t, in.Message.Encrypted)
	assert.False(t, in.Message.Signed)

	sa, pa, ok := alice.Fingerprints()
	require.True(t, ok)
	sb, pb, ok := bob.Fingerprints()
	require.True(t, ok)
	assert.Equal(t, sa, pb)
	assert.Equal(t, pa, sb)
}

func TestRoundTrip(t *testing.T) {
	alice, bob := newPair(t, session.Options{Sign: true})
	establish(t, alice, bob)

	for _, m := range []string{"", "x", "hello", "naïve ünïcödé ✓", "with::delimiter", "AES:nested"} {
		env, err := bob.EncryptOutgoing(m)
		require.NoError(t, err)
		msg, err := alice.DecryptIncoming(envelope.Decode(env.Encode()))
		require.NoError(t, err)
		assert.Equal(t, m, msg.Text)
		assert.True(t, msg.Signed)
	}
}

func TestEncryptBeforeHandshake(t *testing.T) {
	alice, _ := newPair(t, session.Options{})
	_, err := alice.EncryptOutgoing("too early")
	assert.ErrorIs(t, err, domain.ErrKeyNotEstablished)
}

func TestCiphertextBeforeSessionKeyIsDropped(t *testing.T) {
	alice, _ := newPair(t, session.Options{})
	in, err := alice.Receive("AES:Zm9vYmFy")
	assert.ErrorIs(t, err, domain.ErrKeyNotEstablished)
	assert.Nil(t, in.Message)
}

func TestTamperedSignedMessage(t *testing.T) {
	alice, bob := newPair(t, session.Options{Sign: true})
	establish(t, alice, bob)

	env, err := alice.EncryptOutgoing("transfer 10 coins")
	require.NoError(t, err)

	ct, err := base64.StdEncoding.DecodeString(env.Payload)
	require.NoError(t, err)
	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	require.NoError(t, err)

	for i := range ct {
		for bit := 0; bit < 8; bit++ {
			bad := append([]byte(nil), ct...)
			bad[i] ^= 1 << bit
			forged := env
			forged.Payload = base64.StdEncoding.EncodeToString(bad)
			_, err := bob.DecryptIncoming(forged)
			require.ErrorIs(t, err, domain.ErrDecryptionFailed)
		}
	}
	for i := range sig {
		bad := append([]byte(nil), sig...)
		bad[i] ^= 0x80
		forged := env
		forged.Signature = base64.StdEncoding.EncodeToString(bad)
		_, err := bob.DecryptIncoming(forged)
		require.ErrorIs(t, err, domain.ErrInvalidSignature)
	}

	// Flipping characters on the wire never yields an altered plaintext.
	wire := env.Encode()
	for i := len("AES:"); i < len(wire); i++ {
		bad := []byte(wire)
		bad[i] ^= 0x01
		in, err := bob.Receive(string(bad))
		if err == nil {
			require.NotNil(t, in.Message)
			assert.Equal(t, "transfer 10 coins", in.Message.Text)
			continue
		}
		assert.Nil(t, in.Message)
		assert.Contains(t, []string{"DecryptionFailed", "InvalidSignature", "MalformedPayload"}, domain.Kind(err))
	}
}

func TestSignatureFromSomeoneElse(t *testing.T) {
	alice, bob := newPair(t, session.Options{Sign: true})
	establish(t, alice, bob)

	env, err := alice.EncryptOutgoing("hi")
	require.NoError(t, err)

	h := crypto.NewHybrid()
	mallory, err := h.GenerateKeyPair()
	require.NoError(t, err)
	env.Signature = crypto.B64(h.Sign(mallory, []byte("hi")))

	_, err = bob.DecryptIncoming(env)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestRequireSignature(t *testing.T) {
	plainAlice, err := session.New("alice", "bob", crypto.NewHybrid(), session.Options{}, nil)
	require.NoError(t, err)
	strictBob, err := session.New("bob", "alice", crypto.NewHybrid(), session.Options{RequireSignature: true}, nil)
	require.NoError(t, err)
	establish(t, plainAlice, strictBob)

	env, err := plainAlice.EncryptOutgoing("unsigned")
	require.NoError(t, err)
	in, err := strictBob.Receive(env.Encode())
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Nil(t, in.Message)
}

func TestMalformedSignatureSegments(t *testing.T) {
	alice, bob := newPair(t, session.Options{Sign: true})
	establish(t, alice, bob)
	env, err := alice.EncryptOutgoing("hi")
	require.NoError(t, err)

	_, err = bob.Receive(env.Encode() + "::extra")
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = bob.DecryptIncoming(envelope.New(envelope.SessionKey, "x"))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestSystemAndPlaintextFrames(t *testing.T) {
	alice, _ := newPair(t, session.Options{})

	in, err := alice.Receive("SYSTEM:" + envelope.PeerDisconnected)
	require.NoError(t, err)
	assert.True(t, in.PeerLeft)

	in, err = alice.Receive("SYSTEM:relay restarting soon")
	require.NoError(t, err)
	assert.Equal(t, "relay restarting soon", in.Notice)
	assert.False(t, in.PeerLeft)

	in, err = alice.Receive("just text")
	require.NoError(t, err)
	require.NotNil(t, in.Message)
	assert.False(t, in.Message.Encrypted)
	assert.Equal(t, "just text", in.Message.Text)
	assert.Equal(t, handshake.Init, alice.Handshake().State())
}

func TestDuplicateHandshakeFramesAfterEstablishment(t *testing.T) {
	alice, bob := newPair(t, session.Options{})
	inA, err := alice.Receive(joined)
	require.NoError(t, err)
	inB, err := bob.Receive(joined)
	require.NoError(t, err)

	got, err := bob.Receive(inA.Outgoing[0].Encode())
	require.NoError(t, err)
	keyFrame := got.Outgoing[0].Encode()
	_, err = alice.Receive(inB.Outgoing[0].Encode())
	require.NoError(t, err)
	_, err = alice.Receive(keyFrame)
	require.NoError(t, err)

	env, err := bob.EncryptOutgoing("stable")
	require.NoError(t, err)
	peer, _ := alice.Handshake().PeerPublicKey()

	for _, dup := range []string{inB.Outgoing[0].Encode(), keyFrame} {
		in, err := alice.Receive(dup)
		require.NoError(t, err)
		assert.Empty(t, in.Outgoing)
		assert.False(t, in.Established)
	}
	after, _ := alice.Handshake().PeerPublicKey()
	assert.Equal(t, peer, after)
	msg, err := alice.DecryptIncoming(env)
	require.NoError(t, err)
	assert.Equal(t, "stable", msg.Text)
}
