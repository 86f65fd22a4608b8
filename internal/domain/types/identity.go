package types

// PublicKey is the public half of a KeyPair as exchanged with the peer.
type PublicKey struct {
	X  X25519Public
	Ed Ed25519Public
}

// KeyPair holds the per-session X25519 (encryption) and Ed25519 (signing) keys.
// The private halves never leave the process.
type KeyPair struct {
	XPub   X25519Public
	XPriv  X25519Private
	EdPub  Ed25519Public
	EdPriv Ed25519Private
}

// Public returns the public half of the key pair.
func (k KeyPair) Public() PublicKey {
	return PublicKey{X: k.XPub, Ed: k.EdPub}
}
