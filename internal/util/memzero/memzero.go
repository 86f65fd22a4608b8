package memzero

import (
	"crypto/subtle"
	"runtime"

	"cipherlink/internal/domain"
)

// Zero overwrites b with zeros in a constant-time friendly way.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
	runtime.KeepAlive(&b)
}

// KeyPair wipes both private halves of kp in place.
func KeyPair(kp *domain.KeyPair) {
	Zero(kp.XPriv[:])
	Zero(kp.EdPriv[:])
}

// SessionKey wipes k in place.
func SessionKey(k *domain.SessionKey) {
	Zero(k[:])
}
