// Package envelope encodes and decodes the tagged text frames exchanged with
// the peer through the relay.
//
// A frame is a literal prefix followed by a payload:
//
//	SYSTEM:<text>
//	KEY_EXCHANGE:<base64 public key>
//	SESSION_KEY:<base64 sealed session key>
//	AES:<base64 ciphertext>[::<base64 signature>]
//
// Anything without a known prefix decodes as Plaintext carrying the whole
// frame. Decoding never fails; payload validation belongs to the consumer.
package envelope
