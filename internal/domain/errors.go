package domain

import "errors"

var (
	// ErrInvalidKeyFormat indicates a serialized public key could not be parsed.
	ErrInvalidKeyFormat = errors.New("invalid key format")
	// ErrDecryptionFailed covers tampering, wrong keys and malformed ciphertext.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrInvalidSignature indicates a missing or forged message signature.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrKeyNotEstablished is returned when a message needs keys the handshake
	// has not produced yet.
	ErrKeyNotEstablished = errors.New("session key not established")
	// ErrMalformedPayload indicates a tagged envelope whose payload cannot be split.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrKeyConflict indicates the peer sent a second, different session key.
	ErrKeyConflict = errors.New("conflicting session key")
	// ErrInvalidIdentity rejects empty or identical conversation identities.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrTransport is a send failure that leaves the connection usable.
	ErrTransport = errors.New("transport error")
	// ErrConnectionClosed means the peer or the relay ended the conversation.
	ErrConnectionClosed = errors.New("connection closed")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidKeyFormat, "InvalidKeyFormat"},
	{ErrDecryptionFailed, "DecryptionFailed"},
	{ErrInvalidSignature, "InvalidSignature"},
	{ErrKeyNotEstablished, "KeyNotEstablished"},
	{ErrMalformedPayload, "MalformedPayload"},
	{ErrKeyConflict, "KeyConflict"},
	{ErrInvalidIdentity, "InvalidIdentity"},
	{ErrConnectionClosed, "ConnectionClosed"},
	{ErrTransport, "TransportError"},
}

// Kind names the taxonomy entry err belongs to, or "Error" if none matches.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Error"
}

// Recoverable reports whether err only affects a single message and the
// conversation can continue.
func Recoverable(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionClosed):
		return false
	case errors.Is(err, ErrInvalidKeyFormat),
		errors.Is(err, ErrDecryptionFailed),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrKeyNotEstablished),
		errors.Is(err, ErrMalformedPayload),
		errors.Is(err, ErrKeyConflict),
		errors.Is(err, ErrTransport):
		return true
	}
	return false
}
