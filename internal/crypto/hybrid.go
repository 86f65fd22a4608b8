package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"cipherlink/internal/domain"
)

// Hybrid implements domain.CryptoProvider: X25519 sealed boxes carry the
// session key, Ed25519 signs, AES-256-GCM encrypts messages.
type Hybrid struct {
	rand io.Reader
}

// NewHybrid returns a provider drawing randomness from crypto/rand.
func NewHybrid() *Hybrid { return &Hybrid{rand: rand.Reader} }

// GenerateKeyPair creates the per-session encryption and signing keys.
func (h *Hybrid) GenerateKeyPair() (domain.KeyPair, error) {
	var kp domain.KeyPair
	xPriv, xPub, err := GenerateX25519(h.rand)
	if err != nil {
		return kp, fmt.Errorf("x25519 keygen: %w", err)
	}
	edPriv, edPub, err := GenerateEd25519(h.rand)
	if err != nil {
		return kp, fmt.Errorf("ed25519 keygen: %w", err)
	}
	kp.XPriv, kp.XPub, kp.EdPriv, kp.EdPub = xPriv, xPub, edPriv, edPub
	return kp, nil
}

func (h *Hybrid) SerializePublicKey(pub domain.PublicKey) string { return EncodePublicKey(pub) }

func (h *Hybrid) DeserializePublicKey(s string) (domain.PublicKey, error) {
	return DecodePublicKey(s)
}

func (h *Hybrid) AsymmetricEncrypt(pub domain.PublicKey, plaintext []byte) ([]byte, error) {
	return SealTo(pub.X, plaintext)
}

func (h *Hybrid) AsymmetricDecrypt(keys domain.KeyPair, ciphertext []byte) ([]byte, error) {
	return OpenWith(keys.XPub, keys.XPriv, ciphertext)
}

func (h *Hybrid) Sign(keys domain.KeyPair, msg []byte) []byte {
	return SignEd25519(keys.EdPriv, msg)
}

func (h *Hybrid) Verify(pub domain.PublicKey, msg, sig []byte) error {
	if !VerifyEd25519(pub.Ed, msg, sig) {
		return domain.ErrInvalidSignature
	}
	return nil
}

func (h *Hybrid) GenerateSymmetricKey() (domain.SessionKey, error) {
	var k domain.SessionKey
	if _, err := io.ReadFull(h.rand, k[:]); err != nil {
		return k, fmt.Errorf("session key: %w", err)
	}
	return k, nil
}

// SymmetricEncrypt returns base64(nonce || AES-GCM ciphertext).
func (h *Hybrid) SymmetricEncrypt(key domain.SessionKey, plaintext []byte) (string, error) {
	sealed, err := SealAESGCM(key, plaintext)
	if err != nil {
		return "", err
	}
	return B64(sealed), nil
}

func (h *Hybrid) SymmetricDecrypt(key domain.SessionKey, ciphertext string) ([]byte, error) {
	sealed, err := UnB64(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("ciphertext base64: %w", domain.ErrDecryptionFailed)
	}
	return OpenAESGCM(key, sealed)
}

var _ domain.CryptoProvider = (*Hybrid)(nil)
