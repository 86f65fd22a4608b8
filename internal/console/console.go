// Package console is the terminal side of a conversation: it turns stdin
// lines into a channel and prints messages, notices and warnings.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"cipherlink/internal/domain"
)

// Console prints conversation events to a writer.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	prompt string
}

// New returns a Console writing to out.
func New(out io.Writer) *Console {
	return &Console{out: out, prompt: "> "}
}

func (c *Console) Message(msg domain.ChatMessage) {
	var tag string
	switch {
	case !msg.Encrypted:
		tag = " (unencrypted)"
	case msg.Signed:
		tag = " (signed)"
	}
	c.printf("RECEIVED%s: [%s] %s", tag, msg.From, msg.Text)
}

func (c *Console) Notice(text string) {
	c.printf("NOTICE: %s", text)
}

func (c *Console) Warn(kind string, err error) {
	c.printf("WARNING: [%s] %v", kind, err)
}

// Prompt redraws the input prompt.
func (c *Console) Prompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, c.prompt)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\r"+format+"\n%s", append(args, c.prompt)...)
}

var _ domain.Presenter = (*Console)(nil)

// MaxLineSize bounds one line of user input. It matches the relay's frame
// read limit.
const MaxLineSize = 1 << 20

// Lines scans r line by line onto the returned channel, which is closed at
// EOF, on a read error, or once ctx is done. A read error, including a line
// longer than MaxLineSize, is shown as a warning before the channel closes.
// A read already blocked in r is abandoned rather than interrupted; the
// channel is never written after ctx is done.
func (c *Console) Lines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil && ctx.Err() == nil {
			c.Warn("InputError", fmt.Errorf("reading input: %w", err))
		}
	}()
	return ch
}
