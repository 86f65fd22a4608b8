package relay

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"cipherlink/internal/domain"
	"cipherlink/internal/envelope"
)

const writeTimeout = 10 * time.Second

type client struct {
	user      domain.Username
	recipient domain.Username
	ws        *websocket.Conn
}

// Hub pairs relay clients and forwards frames between mutually paired users.
type Hub struct {
	mu      sync.Mutex
	clients map[domain.Username]*client

	log     *logrus.Entry
	metrics *Metrics
}

// NewHub returns an empty hub. metrics may be nil.
func NewHub(log *logrus.Entry, metrics *Metrics) *Hub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Hub{
		clients: make(map[domain.Username]*client),
		log:     log.WithField("component", "hub"),
		metrics: metrics,
	}
}

// ServeHTTP upgrades /ws/<user>@<recipient> requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, recipient, err := ParsePair(strings.TrimPrefix(r.URL.Path, "/ws/"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := &client{user: user, recipient: recipient, ws: ws}
	log := h.log.WithFields(logrus.Fields{"user": user, "recipient": recipient})

	if !h.register(c) {
		log.Warn("user already connected; refusing")
		h.metrics.reject()
		ws.Close(websocket.StatusPolicyViolation, "user already connected")
		return
	}
	h.metrics.connected()
	log.Info("client connected")

	defer func() {
		h.unregister(c)
		h.metrics.disconnected()
		ws.Close(websocket.StatusNormalClosure, "")
		log.Info("client disconnected")
	}()

	ctx := r.Context()
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			log.WithError(err).Debug("read ended")
			return
		}
		if typ != websocket.MessageText {
			h.metrics.drop("binary")
			continue
		}
		text := string(data)
		if envelope.Decode(text).Tag == envelope.System {
			// Only the hub speaks SYSTEM.
			h.metrics.drop("system")
			log.Warn("dropping client frame with SYSTEM prefix")
			continue
		}
		peer := h.partner(c)
		if peer == nil {
			h.metrics.drop("offline")
			h.notify(c, envelope.PeerOffline)
			continue
		}
		if err := write(peer, text); err != nil {
			h.metrics.drop("write")
			log.WithError(err).Warn("forward failed")
			continue
		}
		h.metrics.forward()
	}
}

// Connected reports whether user currently holds a connection.
func (h *Hub) Connected(user domain.Username) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[user]
	return ok
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	if _, taken := h.clients[c.user]; taken {
		h.mu.Unlock()
		return false
	}
	h.clients[c.user] = c
	peer := h.partnerLocked(c)
	h.mu.Unlock()

	if peer != nil {
		h.notify(c, envelope.PeerJoined)
		h.notify(peer, envelope.PeerJoined)
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if h.clients[c.user] == c {
		delete(h.clients, c.user)
	}
	peer := h.partnerLocked(c)
	h.mu.Unlock()

	if peer != nil {
		h.notify(peer, envelope.PeerDisconnected)
	}
}

func (h *Hub) partner(c *client) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.partnerLocked(c)
}

func (h *Hub) partnerLocked(c *client) *client {
	peer := h.clients[c.recipient]
	if peer == nil || peer.recipient != c.user {
		return nil
	}
	return peer
}

func (h *Hub) notify(c *client, text string) {
	if err := write(c, envelope.New(envelope.System, text).Encode()); err != nil {
		h.log.WithError(err).WithField("user", c.user).Debug("notice not delivered")
	}
}

// write sends text to c under its own timeout. A cancelled write closes c's
// websocket, so the caller's request context is never used here.
func write(c *client, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, []byte(text))
}
