// Package crypto exposes the primitives used by cipherlink.
//
// Contents
//
//   - X25519 key generation and anonymous sealed boxes for transporting the
//     session key (GenerateX25519, SealTo, OpenWith)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - AES-256-GCM for chat messages (SealAESGCM, OpenAESGCM)
//   - Public key encoding and short fingerprints for display (EncodePublicKey,
//     DecodePublicKey, Fingerprint)
//   - Hybrid, which bundles all of the above behind domain.CryptoProvider
//
// # Notes
//
// Functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Every failure maps onto the domain error
// taxonomy so callers can decide between discarding a message and aborting.
package crypto
