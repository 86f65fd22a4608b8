// Package session holds the state of one conversation and turns inbound
// frames into handshake progress, chat messages or relay notices.
//
// It owns the handshake.Machine for the conversation (own key pair, peer
// public key, session key) and adds the message layer on top: AES-GCM
// encryption of outgoing text, optional Ed25519 signatures over the plaintext,
// and verification of incoming signatures before anything reaches the user.
package session
