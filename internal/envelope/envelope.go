package envelope

import (
	"fmt"
	"strings"

	"cipherlink/internal/domain"
)

// Tag identifies the kind of frame.
type Tag int

const (
	Plaintext Tag = iota
	System
	KeyExchange
	SessionKey
	Ciphertext
)

// SignatureDelimiter separates ciphertext from its signature. It cannot occur
// in standard base64 output.
const SignatureDelimiter = "::"

var prefixes = map[Tag]string{
	System:      "SYSTEM:",
	KeyExchange: "KEY_EXCHANGE:",
	SessionKey:  "SESSION_KEY:",
	Ciphertext:  "AES:",
}

// byLength lists tagged prefixes longest first so the longest match wins.
var byLength = []Tag{KeyExchange, SessionKey, System, Ciphertext}

// Prefix returns the literal wire prefix for t; Plaintext has none.
func (t Tag) Prefix() string { return prefixes[t] }

func (t Tag) String() string {
	switch t {
	case System:
		return "SYSTEM"
	case KeyExchange:
		return "KEY_EXCHANGE"
	case SessionKey:
		return "SESSION_KEY"
	case Ciphertext:
		return "CIPHERTEXT"
	default:
		return "PLAINTEXT"
	}
}

// Envelope is one decoded frame.
type Envelope struct {
	Tag     Tag
	Payload string
	// Signature is only used with Ciphertext; empty means unsigned.
	Signature string
}

// New builds an unsigned envelope.
func New(tag Tag, payload string) Envelope {
	return Envelope{Tag: tag, Payload: payload}
}

// Encode renders the envelope as a wire frame.
func (e Envelope) Encode() string {
	var b strings.Builder
	b.WriteString(e.Tag.Prefix())
	b.WriteString(e.Payload)
	if e.Signature != "" {
		b.WriteString(SignatureDelimiter)
		b.WriteString(e.Signature)
	}
	return b.String()
}

// Decode parses a wire frame. The tag is derived from the literal prefix only.
// For Ciphertext the payload still carries any signature segment; use
// SplitSignature to separate it.
func Decode(wire string) Envelope {
	for _, t := range byLength {
		if p := prefixes[t]; strings.HasPrefix(wire, p) {
			return Envelope{Tag: t, Payload: wire[len(p):]}
		}
	}
	return Envelope{Tag: Plaintext, Payload: wire}
}

// SplitSignature separates a ciphertext payload into body and signature.
// A payload with no delimiter is unsigned. Any split other than exactly two
// non-empty parts is ErrMalformedPayload.
func (e Envelope) SplitSignature() (Envelope, error) {
	if e.Signature != "" || !strings.Contains(e.Payload, SignatureDelimiter) {
		return e, nil
	}
	parts := strings.Split(e.Payload, SignatureDelimiter)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return e, fmt.Errorf("ciphertext has %d signature segments: %w", len(parts), domain.ErrMalformedPayload)
	}
	return Envelope{Tag: e.Tag, Payload: parts[0], Signature: parts[1]}, nil
}

// Relay notices carried in SYSTEM envelopes. The text is a contract with the
// relay and must match exactly.
const (
	PeerJoined       = "The other user has connected"
	PeerDisconnected = "The other user has disconnected"
	PeerOffline      = "The other user is not connected"
)
