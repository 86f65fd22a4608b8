package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cipherlink/internal/domain"
	"cipherlink/internal/envelope"
	"cipherlink/internal/services/session"
)

// ExitCommand ends the conversation when typed on its own (any case).
const ExitCommand = "exit"

// A handshake frame gets handshakeAttempts tries, handshakeRetryDelay apart,
// before the conversation is given up.
const (
	handshakeAttempts   = 3
	handshakeRetryDelay = 200 * time.Millisecond
)

var (
	// ErrUserExit is the termination reason when the user leaves.
	ErrUserExit = errors.New("user exited")
	// ErrPeerLeft is the termination reason when the relay reports the peer gone.
	ErrPeerLeft = errors.New("peer left the conversation")
)

// Driver runs a conversation until one side ends it.
type Driver struct {
	session   *session.Service
	transport domain.Transport
	input     <-chan string
	ui        domain.Presenter
	log       *logrus.Entry

	stop chan error
}

// NewDriver wires a session to a transport and a source of user lines. The
// driver owns transport from now on and closes it when Run returns.
func NewDriver(
	sess *session.Service,
	transport domain.Transport,
	input <-chan string,
	ui domain.Presenter,
	log *logrus.Entry,
) *Driver {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Driver{
		session:   sess,
		transport: transport,
		input:     input,
		ui:        ui,
		log:       log.WithField("component", "chat"),
		stop:      make(chan error, 2),
	}
}

// Run blocks until the conversation ends. It returns nil when the user
// exits, ErrPeerLeft when the peer leaves, and otherwise the error that ended
// the conversation (domain.ErrConnectionClosed, or ctx's error).
func (d *Driver) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var g errgroup.Group
	g.Go(func() error { return d.inbound(ctx) })
	g.Go(func() error { return d.outbound(ctx) })
	g.Go(func() error { return d.supervise(ctx, cancel) })
	err := g.Wait()

	if cerr := d.transport.Close(); cerr != nil {
		d.log.WithError(cerr).Debug("closing transport")
	}
	d.session.Close()

	if err == nil {
		err = context.Cause(ctx)
	}
	d.log.WithField("reason", err).Info("conversation ended")
	if errors.Is(err, ErrUserExit) {
		return nil
	}
	return err
}

func (d *Driver) supervise(ctx context.Context, cancel context.CancelCauseFunc) error {
	select {
	case reason := <-d.stop:
		d.log.WithField("reason", reason).Debug("terminating")
		cancel(reason)
	case <-ctx.Done():
	}
	return nil
}

// terminate records why the conversation must end. Only the first reason
// reaches the supervisor.
func (d *Driver) terminate(reason error) {
	select {
	case d.stop <- reason:
	default:
	}
}

func (d *Driver) inbound(ctx context.Context) error {
	for {
		wire, err := d.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() == nil {
				d.terminate(err)
			}
			return nil
		}

		in, err := d.session.Receive(wire)
		for _, env := range in.Outgoing {
			if serr := d.send(ctx, env); serr != nil {
				d.terminate(serr)
				return nil
			}
		}
		if err != nil {
			if !domain.Recoverable(err) {
				d.terminate(err)
				return nil
			}
			d.log.WithError(err).WithField("tag", in.Tag).Warn("frame discarded")
			d.ui.Warn(domain.Kind(err), fmt.Errorf("discarded %s frame: %w", in.Tag, err))
			continue
		}

		if in.Message != nil {
			d.ui.Message(*in.Message)
		}
		if in.Notice != "" {
			d.ui.Notice(in.Notice)
		}
		if in.Established {
			d.announceEstablished()
		}
		if in.PeerLeft {
			d.terminate(ErrPeerLeft)
			return nil
		}
	}
}

func (d *Driver) outbound(ctx context.Context) error {
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-d.input:
		}
		if !ok {
			d.terminate(ErrUserExit)
			return nil
		}
		if strings.EqualFold(strings.TrimSpace(line), ExitCommand) {
			d.terminate(ErrUserExit)
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		env, err := d.session.EncryptOutgoing(line)
		if err != nil {
			d.ui.Warn(domain.Kind(err), fmt.Errorf("handshake still in progress, message not sent: %w", err))
			continue
		}
		if err := d.send(ctx, env); err != nil {
			if ctx.Err() == nil {
				d.terminate(err)
			}
			return nil
		}
	}
}

// send transmits env. Transient transport failures on chat messages are
// reported and swallowed. The handshake has already recorded KEY_EXCHANGE and
// SESSION_KEY frames as sent, so those are retried and, if they still cannot
// be delivered, end the conversation with domain.ErrConnectionClosed. A
// closed connection or cancelled context is returned as is.
func (d *Driver) send(ctx context.Context, env envelope.Envelope) error {
	attempts := 1
	if isHandshake(env.Tag) {
		attempts = handshakeAttempts
	}
	log := d.log.WithField("tag", env.Tag)

	var err error
	for i := 1; ; i++ {
		err = d.transport.Send(ctx, env.Encode())
		switch {
		case err == nil:
			log.Debug("frame sent")
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case !errors.Is(err, domain.ErrTransport):
			return err
		}
		if i >= attempts {
			break
		}
		log.WithError(err).WithField("attempt", i).Warn("handshake frame not sent; retrying")
		select {
		case <-time.After(handshakeRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if isHandshake(env.Tag) {
		log.WithError(err).Error("handshake frame not delivered")
		return fmt.Errorf("%s frame not delivered after %d attempts: %v: %w",
			env.Tag, attempts, err, domain.ErrConnectionClosed)
	}
	log.WithError(err).Warn("send failed")
	d.ui.Warn(domain.Kind(err), fmt.Errorf("%s frame not sent: %w", env.Tag, err))
	return nil
}

func isHandshake(tag envelope.Tag) bool {
	return tag == envelope.KeyExchange || tag == envelope.SessionKey
}

func (d *Driver) announceEstablished() {
	self, peer, ok := d.session.Fingerprints()
	if !ok {
		d.ui.Notice("secure channel established")
		return
	}
	d.ui.Notice(fmt.Sprintf("secure channel established (you: %s, %s: %s)",
		self, d.session.Handshake().Peer(), peer))
}
