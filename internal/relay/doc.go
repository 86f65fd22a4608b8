// Package relay connects cipherlink to the websocket relay that pairs two
// users and forwards their frames.
//
// Client side, Dial opens /ws/<user>@<recipient> and returns a Conn that
// implements domain.Transport. Server side, Hub pairs connections whose
// user/recipient match, forwards text frames verbatim, and sends SYSTEM
// notices when the peer joins or leaves. The relay never sees plaintext once
// the handshake has completed.
//
// Pipe returns two connected in-memory transports with the same semantics,
// used to drive conversations without a network.
//
// All blocking calls take a context. Errors map onto the domain taxonomy:
// domain.ErrConnectionClosed once the channel is gone, domain.ErrTransport for
// failures that leave it usable.
package relay
