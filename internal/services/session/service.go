package session

import (
	"encoding/base64"
	"fmt"

	"github.com/sirupsen/logrus"

	"cipherlink/internal/crypto"
	"cipherlink/internal/domain"
	"cipherlink/internal/envelope"
	"cipherlink/internal/protocol/handshake"
	"cipherlink/internal/util/memzero"
)

// Options selects the authenticated variant of the message protocol.
type Options struct {
	// Sign attaches a signature over the plaintext to every outgoing message.
	Sign bool
	// RequireSignature rejects unsigned incoming ciphertext.
	RequireSignature bool
}

// Inbound is the outcome of one received frame.
type Inbound struct {
	Tag envelope.Tag
	// Outgoing lists handshake envelopes to transmit, in order.
	Outgoing []envelope.Envelope
	// Message is set when the frame carried something for the user.
	Message *domain.ChatMessage
	// Notice is relay text for the operator.
	Notice string
	// PeerLeft is set when the relay reports the peer disconnected.
	PeerLeft bool
	// Established is set on the frame that completed the handshake.
	Established bool
}

// Service is one conversation between self and peer.
type Service struct {
	hs   *handshake.Machine
	opts Options
	log  *logrus.Entry
}

// New creates the conversation state and generates this end's key pair.
func New(
	self, peer domain.Username,
	provider domain.CryptoProvider,
	opts Options,
	log *logrus.Entry,
) (*Service, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	hs, err := handshake.New(self, peer, provider, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		hs:   hs,
		opts: opts,
		log:  log.WithFields(logrus.Fields{"component": "session", "self": self, "peer": peer}),
	}, nil
}

// Receive decodes a wire frame and applies it. Errors are per-frame: the
// returned Inbound still carries any envelopes that must be sent.
func (s *Service) Receive(wire string) (Inbound, error) {
	env := envelope.Decode(wire)
	in := Inbound{Tag: env.Tag}
	was := s.hs.Established()
	s.log.WithField("tag", env.Tag).Debug("frame received")

	var err error
	switch env.Tag {
	case envelope.System:
		switch env.Payload {
		case envelope.PeerJoined:
			in.Outgoing = s.hs.PeerConnected()
			in.Notice = fmt.Sprintf("%s joined the conversation", s.hs.Peer())
		case envelope.PeerDisconnected:
			in.PeerLeft = true
			in.Notice = env.Payload
		default:
			in.Notice = env.Payload
		}
	case envelope.KeyExchange:
		in.Outgoing, err = s.hs.HandleKeyExchange(env.Payload)
	case envelope.SessionKey:
		err = s.hs.HandleSessionKey(env.Payload)
	case envelope.Ciphertext:
		var msg domain.ChatMessage
		if msg, err = s.DecryptIncoming(env); err == nil {
			in.Message = &msg
		}
	default:
		in.Message = &domain.ChatMessage{From: s.hs.Peer(), Text: env.Payload}
	}

	in.Established = !was && s.hs.Established()
	return in, err
}

// EncryptOutgoing turns user text into a ciphertext envelope. It never falls
// back to plaintext: without a session key it fails with ErrKeyNotEstablished.
func (s *Service) EncryptOutgoing(text string) (envelope.Envelope, error) {
	ct, err := s.hs.Seal([]byte(text))
	if err != nil {
		return envelope.Envelope{}, err
	}
	env := envelope.New(envelope.Ciphertext, ct)
	if s.opts.Sign {
		env.Signature = crypto.B64(s.hs.Sign([]byte(text)))
	}
	return env, nil
}

// DecryptIncoming opens a ciphertext envelope and verifies its signature if
// one is attached. Nothing is returned unless every check passed.
func (s *Service) DecryptIncoming(env envelope.Envelope) (domain.ChatMessage, error) {
	if env.Tag != envelope.Ciphertext {
		return domain.ChatMessage{}, fmt.Errorf("%s envelope is not ciphertext: %w", env.Tag, domain.ErrMalformedPayload)
	}
	env, err := env.SplitSignature()
	if err != nil {
		return domain.ChatMessage{}, err
	}
	pt, err := s.hs.Open(env.Payload)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("message from %s: %w", s.hs.Peer(), err)
	}

	signed := env.Signature != ""
	switch {
	case signed:
		sig, derr := base64.StdEncoding.DecodeString(env.Signature)
		if derr != nil {
			err = fmt.Errorf("signature base64: %w", domain.ErrInvalidSignature)
		} else {
			err = s.hs.Verify(pt, sig)
		}
	case s.opts.RequireSignature:
		err = fmt.Errorf("unsigned message: %w", domain.ErrInvalidSignature)
	}
	if err != nil {
		memzero.Zero(pt)
		return domain.ChatMessage{}, fmt.Errorf("message from %s: %w", s.hs.Peer(), err)
	}

	return domain.ChatMessage{
		From:      s.hs.Peer(),
		Text:      string(pt),
		Signed:    signed,
		Encrypted: true,
	}, nil
}

// Established reports whether messages can be exchanged.
func (s *Service) Established() bool { return s.hs.Established() }

// Handshake exposes the underlying key state.
func (s *Service) Handshake() *handshake.Machine { return s.hs }

// Fingerprints returns short fingerprints of both public keys once the peer's
// key is known, for out-of-band comparison.
func (s *Service) Fingerprints() (self, peer domain.Fingerprint, ok bool) {
	pub, ok := s.hs.PeerPublicKey()
	if !ok {
		return "", "", false
	}
	return crypto.Fingerprint(s.hs.PublicKey()), crypto.Fingerprint(pub), true
}

// Close wipes the conversation's key material.
func (s *Service) Close() { s.hs.Close() }
