package handshake

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"cipherlink/internal/crypto"
	"cipherlink/internal/domain"
	"cipherlink/internal/envelope"
	"cipherlink/internal/util/memzero"
)

// Machine holds the key state of one conversation and drives the handshake.
type Machine struct {
	mu sync.RWMutex

	self     domain.Username
	peer     domain.Username
	provider domain.CryptoProvider
	log      *logrus.Entry

	keys          domain.KeyPair
	peerPub       domain.PublicKey
	hasPeerPub    bool
	sessionKey    domain.SessionKey
	hasSessionKey bool
	publicKeySent bool
	state         State
}

// New validates the identities and generates this end's key pair.
func New(self, peer domain.Username, provider domain.CryptoProvider, log *logrus.Entry) (*Machine, error) {
	if self == "" || peer == "" {
		return nil, fmt.Errorf("empty username: %w", domain.ErrInvalidIdentity)
	}
	if self == peer {
		return nil, fmt.Errorf("cannot chat with yourself (%q): %w", self, domain.ErrInvalidIdentity)
	}
	keys, err := provider.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generating session key pair: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Machine{
		self:     self,
		peer:     peer,
		provider: provider,
		keys:     keys,
		log: log.WithFields(logrus.Fields{
			"component": "handshake",
			"self":      self,
			"peer":      peer,
		}),
	}, nil
}

// PeerConnected handles the relay's notice that the peer joined: our public
// key goes out exactly once.
func (m *Machine) PeerConnected() []envelope.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publicKeySent {
		return nil
	}
	return []envelope.Envelope{m.sendOwnKeyLocked()}
}

// HandleKeyExchange processes the peer's KEY_EXCHANGE payload. A malformed key
// leaves the state untouched.
func (m *Machine) HandleKeyExchange(payload string) ([]envelope.Envelope, error) {
	pub, err := m.provider.DeserializePublicKey(payload)
	if err != nil {
		return nil, fmt.Errorf("key exchange from %s: %w", m.peer, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasPeerPub && m.peerPub != pub {
		m.log.Warn("peer sent a different public key; keeping the first one")
		return nil, fmt.Errorf("key exchange from %s: %w", m.peer, domain.ErrKeyConflict)
	}
	if !m.hasPeerPub {
		m.peerPub, m.hasPeerPub = pub, true
		m.log.WithField("peer_fingerprint", crypto.Fingerprint(pub)).Debug("peer public key stored")
	}

	var out []envelope.Envelope
	if !m.publicKeySent {
		out = append(out, m.sendOwnKeyLocked())
	}
	m.advanceLocked(PublicKeyExchanged)

	if m.hasSessionKey || !m.publicKeySent || !IsGenerator(m.self, m.peer) {
		return out, nil
	}

	key, err := m.provider.GenerateSymmetricKey()
	if err != nil {
		return out, fmt.Errorf("generating session key: %w", err)
	}
	sealed, err := m.provider.AsymmetricEncrypt(m.peerPub, key[:])
	if err != nil {
		memzero.SessionKey(&key)
		return out, fmt.Errorf("sealing session key: %w", err)
	}
	out = append(out, envelope.New(envelope.SessionKey, base64.StdEncoding.EncodeToString(sealed)))
	m.sessionKey, m.hasSessionKey = key, true
	memzero.SessionKey(&key)
	m.advanceLocked(KeyEstablished)
	m.log.Info("generated and sent session key")
	return out, nil
}

// HandleSessionKey opens a SESSION_KEY payload with our private key. It does
// not need the peer's public key, so it may arrive before KEY_EXCHANGE.
func (m *Machine) HandleSessionKey(payload string) error {
	sealed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("session key base64: %w", domain.ErrDecryptionFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.provider.AsymmetricDecrypt(m.keys, sealed)
	if err != nil {
		return fmt.Errorf("session key from %s: %w", m.peer, err)
	}
	defer memzero.Zero(raw)

	var key domain.SessionKey
	if len(raw) != len(key) {
		return fmt.Errorf("session key: want %d bytes, got %d: %w", len(key), len(raw), domain.ErrDecryptionFailed)
	}
	copy(key[:], raw)
	defer memzero.SessionKey(&key)

	if m.hasSessionKey {
		if key != m.sessionKey {
			m.log.Warn("peer sent a different session key; keeping the first one")
			return fmt.Errorf("session key from %s: %w", m.peer, domain.ErrKeyConflict)
		}
		m.log.Debug("duplicate session key ignored")
		return nil
	}
	m.sessionKey, m.hasSessionKey = key, true
	m.advanceLocked(KeyEstablished)
	m.log.Info("received session key")
	return nil
}

// Seal encrypts plaintext under the session key.
func (m *Machine) Seal(plaintext []byte) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasSessionKey {
		return "", domain.ErrKeyNotEstablished
	}
	return m.provider.SymmetricEncrypt(m.sessionKey, plaintext)
}

// Open decrypts a ciphertext produced by the peer's Seal.
func (m *Machine) Open(ciphertext string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasSessionKey {
		return nil, domain.ErrKeyNotEstablished
	}
	return m.provider.SymmetricDecrypt(m.sessionKey, ciphertext)
}

// Sign signs msg with our private signing key.
func (m *Machine) Sign(msg []byte) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.provider.Sign(m.keys, msg)
}

// Verify checks sig over msg against the peer's public key.
func (m *Machine) Verify(msg, sig []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.hasPeerPub {
		return fmt.Errorf("no peer public key to verify with: %w", domain.ErrKeyNotEstablished)
	}
	return m.provider.Verify(m.peerPub, msg, sig)
}

// State returns the current handshake state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Established reports whether the session key is set.
func (m *Machine) Established() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasSessionKey
}

// PublicKeySent reports whether our public key has been handed out for sending.
func (m *Machine) PublicKeySent() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.publicKeySent
}

// PeerPublicKey returns the peer's public key once known.
func (m *Machine) PeerPublicKey() (domain.PublicKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.peerPub, m.hasPeerPub
}

// PublicKey returns our own public key.
func (m *Machine) PublicKey() domain.PublicKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.keys.Public()
}

// Generator reports whether this end generates the session key.
func (m *Machine) Generator() bool { return IsGenerator(m.self, m.peer) }

func (m *Machine) Self() domain.Username { return m.self }

func (m *Machine) Peer() domain.Username { return m.peer }

// Close wipes private key material. The Machine is unusable afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	memzero.KeyPair(&m.keys)
	memzero.SessionKey(&m.sessionKey)
	m.hasSessionKey = false
}

func (m *Machine) sendOwnKeyLocked() envelope.Envelope {
	m.publicKeySent = true
	m.advanceLocked(PublicKeySent)
	m.log.Debug("sending public key")
	return envelope.New(envelope.KeyExchange, m.provider.SerializePublicKey(m.keys.Public()))
}

func (m *Machine) advanceLocked(next State) {
	if next <= m.state {
		return
	}
	m.log.WithField("state", next).Debug("handshake advanced")
	m.state = next
}
