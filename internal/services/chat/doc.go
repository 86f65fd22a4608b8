// Package chat drives one conversation over a relay transport.
//
// Three goroutines share a session.Service:
//
//   - the inbound loop receives frames in arrival order and feeds them to the
//     session; it is the only writer of handshake state
//   - the outbound loop takes user lines in entry order, encrypts and sends them
//   - the supervisor waits for the first termination reason (transport closed,
//     peer left, user exit, unrecoverable error, or the caller's context) and
//     cancels the shared context
//
// Blocking points (transport receive, next input line) select on that context,
// so shutdown is immediate. Run returns only after all three have finished; it
// then closes the transport and wipes the session keys.
package chat
