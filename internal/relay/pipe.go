package relay

import (
	"context"
	"fmt"
	"sync"

	"cipherlink/internal/domain"
)

// pipeEnd is one side of an in-memory transport pair.
type pipeEnd struct {
	in   <-chan string
	out  chan<- string
	done chan struct{} // closed when either side closes
	once *sync.Once
}

// Pipe returns two connected transports. Frames sent on one arrive, in
// order, on the other. Closing either end closes both.
func Pipe(buffer int) (domain.Transport, domain.Transport) {
	ab := make(chan string, buffer)
	ba := make(chan string, buffer)
	done := make(chan struct{})
	once := new(sync.Once)
	return &pipeEnd{in: ba, out: ab, done: done, once: once},
		&pipeEnd{in: ab, out: ba, done: done, once: once}
}

func (p *pipeEnd) Send(ctx context.Context, text string) error {
	select {
	case <-p.done:
		return fmt.Errorf("send: %w", domain.ErrConnectionClosed)
	default:
	}
	select {
	case p.out <- text:
		return nil
	case <-p.done:
		return fmt.Errorf("send: %w", domain.ErrConnectionClosed)
	case <-ctx.Done():
		return fmt.Errorf("send: %w", ctx.Err())
	}
}

func (p *pipeEnd) Receive(ctx context.Context) (string, error) {
	select {
	case text := <-p.in:
		return text, nil
	default:
	}
	select {
	case text := <-p.in:
		return text, nil
	case <-p.done:
		return "", fmt.Errorf("receive: %w", domain.ErrConnectionClosed)
	case <-ctx.Done():
		return "", fmt.Errorf("receive: %w", ctx.Err())
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
