// Package main runs the cipherlink relay. Clients connect over websocket to
// /ws/<user>@<recipient>; two clients naming each other are paired and every
// text frame from one is forwarded verbatim to the other.
//
// Endpoints
//
//	GET /ws/{user}@{recipient}
//	    Upgrade to a websocket. A second connection for an already connected
//	    user is closed with a policy violation.
//
//	GET /metrics
//	    Prometheus metrics (disable with --metrics=false).
//
//	GET /healthz
//	    Liveness probe.
//
// Behaviour
//
//   - When both sides of a pair are connected each receives
//     "SYSTEM:The other user has connected".
//   - A frame sent while the recipient is absent is answered with
//     "The other user is not connected".
//   - When a client leaves, its partner receives
//     "SYSTEM:The other user has disconnected".
//   - Client frames that start with "SYSTEM:" are dropped; only the relay
//     sends SYSTEM notices.
//
// The relay never sees plaintext or private keys. It forwards public keys,
// sealed session keys and ciphertext without inspecting them.
package main
