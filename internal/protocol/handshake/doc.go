// Package handshake implements the key agreement that turns two relay
// identities into a shared AES session key.
//
// # Overview
//
// Each end generates a fresh X25519/Ed25519 key pair for the conversation and
// never persists it. The handshake then runs entirely over tagged envelopes:
//
//  1. When the relay reports that the peer joined (or the peer's key arrives
//     first), send our public key as KEY_EXCHANGE.
//  2. On the peer's KEY_EXCHANGE, remember its public key.
//  3. The end whose username is byte-wise greater (see Elect) generates a
//     random session key, seals it to the peer's X25519 key and sends it as
//     SESSION_KEY. The other end opens it with its private key.
//
// # States
//
//	Init -> PublicKeySent -> PublicKeyExchanged -> KeyEstablished
//
// States only move forward. The peer public key and the session key are each
// written once; duplicates are ignored and conflicting values are reported
// with domain.ErrKeyConflict without touching the stored value.
//
// # I/O
//
// The Machine performs no I/O. Inputs return the envelopes to transmit, in
// order, and the caller sends them.
//
// Concurrency: a Machine is safe for concurrent use. Handshake inputs are
// expected from a single goroutine; encryption helpers may be called from any.
package handshake
