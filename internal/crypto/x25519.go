package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"cipherlink/internal/domain"
)

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519(r io.Reader) (priv domain.X25519Private, pub domain.X25519Public, err error) {
	if _, err = io.ReadFull(r, priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return
	}
	copy(pub[:], pb)
	return
}

// SealTo encrypts msg to pub with an anonymous NaCl box. Only the holder of
// the matching private key can open it.
func SealTo(pub domain.X25519Public, msg []byte) ([]byte, error) {
	p := [32]byte(pub)
	out, err := box.SealAnonymous(nil, msg, &p, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return out, nil
}

// OpenWith opens a box produced by SealTo.
func OpenWith(pub domain.X25519Public, priv domain.X25519Private, sealed []byte) ([]byte, error) {
	p, k := [32]byte(pub), [32]byte(priv)
	out, ok := box.OpenAnonymous(nil, sealed, &p, &k)
	if !ok {
		return nil, domain.ErrDecryptionFailed
	}
	return out, nil
}

func clamp(k *domain.X25519Private) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
