package relay

import (
	"fmt"
	"net/url"
	"strings"

	"cipherlink/internal/domain"
)

// ChatURL builds the websocket URL for user talking to recipient. host may be
// a bare host:port or carry a ws, wss, http or https scheme.
func ChatURL(host string, user, recipient domain.Username) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("relay address is empty")
	}
	if !strings.Contains(host, "://") {
		host = "ws://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("relay address %q: %w", host, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("relay address %q: unsupported scheme %q", host, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("relay address %q: missing host", host)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + user.String() + "@" + recipient.String()
	return u.String(), nil
}

// ParsePair splits the decoded path segment "<user>@<recipient>".
func ParsePair(seg string) (user, recipient domain.Username, err error) {
	i := strings.LastIndex(seg, "@")
	if i <= 0 || i == len(seg)-1 {
		return "", "", fmt.Errorf("want <user>@<recipient>, got %q: %w", seg, domain.ErrInvalidIdentity)
	}
	user, recipient = domain.Username(seg[:i]), domain.Username(seg[i+1:])
	if user == recipient {
		return "", "", fmt.Errorf("user and recipient are both %q: %w", user, domain.ErrInvalidIdentity)
	}
	return user, recipient, nil
}
