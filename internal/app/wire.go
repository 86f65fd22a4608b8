package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"cipherlink/internal/crypto"
	"cipherlink/internal/domain"
	"cipherlink/internal/relay"
	"cipherlink/internal/services/chat"
	"cipherlink/internal/services/session"
)

// Wire bundles the shared dependencies for the CLI.
type Wire struct {
	Config Config
	Crypto domain.CryptoProvider
	Log    *logrus.Logger
}

// NewWire constructs the dependency graph from cfg. Logs go to logOut.
func NewWire(cfg Config, logOut io.Writer) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := cfg.NewLogger(logOut)
	if err != nil {
		return nil, err
	}
	return &Wire{
		Config: cfg,
		Crypto: crypto.NewHybrid(),
		Log:    log,
	}, nil
}

// Conversation creates the session for self talking to peer, dials the relay
// and returns the driver that runs it. The driver owns the connection.
func (w *Wire) Conversation(
	ctx context.Context,
	self, peer domain.Username,
	input <-chan string,
	ui domain.Presenter,
) (*chat.Driver, error) {
	log := w.Log.WithFields(logrus.Fields{"self": self, "peer": peer})

	sess, err := session.New(self, peer, w.Crypto, session.Options{
		Sign:             w.Config.Sign,
		RequireSignature: w.Config.RequireSignature,
	}, log)
	if err != nil {
		return nil, err
	}

	u, err := relay.ChatURL(w.Config.Relay, self, peer)
	if err != nil {
		sess.Close()
		return nil, err
	}
	dctx, cancel := context.WithTimeout(ctx, w.Config.DialTimeout)
	defer cancel()
	conn, err := relay.Dial(dctx, u, log)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectionClosed, err)
	}
	return chat.NewDriver(sess, conn, input, ui, log), nil
}
