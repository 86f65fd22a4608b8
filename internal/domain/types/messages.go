package types

// ChatMessage is a decrypted message ready to be shown to the user.
type ChatMessage struct {
	From      Username
	Text      string
	Signed    bool // signature attached and verified
	Encrypted bool // false for plaintext fallback envelopes
}
