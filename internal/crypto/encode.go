package crypto

import (
	"encoding/base64"
	"fmt"

	"cipherlink/internal/domain"
)

// PublicKeySize is the length of an encoded public key before base64.
const PublicKeySize = 64

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// UnB64 decodes standard base64.
func UnB64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// EncodePublicKey renders pub as base64(x25519 || ed25519).
func EncodePublicKey(pub domain.PublicKey) string {
	buf := make([]byte, 0, PublicKeySize)
	buf = append(buf, pub.X[:]...)
	buf = append(buf, pub.Ed[:]...)
	return B64(buf)
}

// DecodePublicKey parses the output of EncodePublicKey.
func DecodePublicKey(s string) (domain.PublicKey, error) {
	var pub domain.PublicKey
	raw, err := UnB64(s)
	if err != nil {
		return pub, fmt.Errorf("public key base64: %w", domain.ErrInvalidKeyFormat)
	}
	if len(raw) != PublicKeySize {
		return pub, fmt.Errorf("public key: want %d bytes, got %d: %w", PublicKeySize, len(raw), domain.ErrInvalidKeyFormat)
	}
	copy(pub.X[:], raw[:32])
	copy(pub.Ed[:], raw[32:])
	if pub.X.IsZero() {
		return domain.PublicKey{}, fmt.Errorf("public key: zero x25519 key: %w", domain.ErrInvalidKeyFormat)
	}
	return pub, nil
}
