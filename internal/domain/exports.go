package domain

import (
	interfaces "cipherlink/internal/domain/interfaces"
	types "cipherlink/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username       = types.Username
	Fingerprint    = types.Fingerprint
	X25519Public   = types.X25519Public
	X25519Private  = types.X25519Private
	Ed25519Public  = types.Ed25519Public
	Ed25519Private = types.Ed25519Private
	SessionKey     = types.SessionKey
	PublicKey      = types.PublicKey
	KeyPair        = types.KeyPair
	ChatMessage    = types.ChatMessage
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Transport      = interfaces.Transport
	CryptoProvider = interfaces.CryptoProvider
	Presenter      = interfaces.Presenter
)
