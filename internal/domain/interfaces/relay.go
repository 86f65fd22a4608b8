package interfaces

import "context"

// Transport is an established, ordered, bidirectional text channel to the relay.
//
// Receive blocks until the next message arrives or ctx is done. Both methods
// report domain.ErrConnectionClosed once the channel is gone; Send reports
// domain.ErrTransport for failures that leave the channel usable.
type Transport interface {
	Send(ctx context.Context, text string) error
	Receive(ctx context.Context) (string, error)
	Close() error
}
