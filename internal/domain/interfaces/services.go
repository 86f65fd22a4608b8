package interfaces

import domaintypes "cipherlink/internal/domain/types"

// CryptoProvider exposes the asymmetric and symmetric primitives used by the
// handshake and the session. Every operation reports failures; none panic.
type CryptoProvider interface {
	GenerateKeyPair() (domaintypes.KeyPair, error)
	SerializePublicKey(pub domaintypes.PublicKey) string
	DeserializePublicKey(s string) (domaintypes.PublicKey, error)

	AsymmetricEncrypt(pub domaintypes.PublicKey, plaintext []byte) ([]byte, error)
	AsymmetricDecrypt(keys domaintypes.KeyPair, ciphertext []byte) ([]byte, error)

	Sign(keys domaintypes.KeyPair, msg []byte) []byte
	Verify(pub domaintypes.PublicKey, msg, sig []byte) error

	GenerateSymmetricKey() (domaintypes.SessionKey, error)
	SymmetricEncrypt(key domaintypes.SessionKey, plaintext []byte) (string, error)
	SymmetricDecrypt(key domaintypes.SessionKey, ciphertext string) ([]byte, error)
}

// Presenter is where the chat loop sends everything the operator should see.
type Presenter interface {
	Message(msg domaintypes.ChatMessage)
	Notice(text string)
	Warn(kind string, err error)
}
