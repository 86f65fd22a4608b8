package handshake

import "cipherlink/internal/domain"

// State is the handshake progress of one conversation.
type State int

const (
	Init State = iota
	PublicKeySent
	PublicKeyExchanged
	KeyEstablished
)

func (s State) String() string {
	switch s {
	case Init:
		return "INIT"
	case PublicKeySent:
		return "PUBLIC_KEY_SENT"
	case PublicKeyExchanged:
		return "PUBLIC_KEY_EXCHANGED"
	case KeyEstablished:
		return "KEY_ESTABLISHED"
	default:
		return "UNKNOWN"
	}
}

// Elect returns which of a and b generates the session key: the byte-wise
// greater username. Equal usernames elect a.
func Elect(a, b domain.Username) domain.Username {
	if a >= b {
		return a
	}
	return b
}

// IsGenerator reports whether self generates the session key when talking to peer.
func IsGenerator(self, peer domain.Username) bool {
	return Elect(self, peer) == self
}
