package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherlink/internal/console"
	"cipherlink/internal/domain"
	"cipherlink/internal/relay"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cipherlink.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := writeConfig(t, `
relay = "wss://relay.example"
sign = true
require_signature = true
log_level = "info"
dial_timeout = "3s"
`)
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "wss://relay.example", cfg.Relay)
	assert.True(t, cfg.Sign)
	assert.True(t, cfg.RequireSignature)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "relay = \"x\"\nsignn = true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signn")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{"SERVER_HOST": " localhost:9000 ", "DEBUG": "true"}
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "localhost:9000", cfg.Relay)
	assert.True(t, cfg.Debug)

	log, err := cfg.NewLogger(&bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	env["DEBUG"] = "maybe"
	assert.Error(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DialTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestConversationDialFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Relay = "127.0.0.1:1"
	cfg.DialTimeout = time.Second
	w, err := NewWire(cfg, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = w.Conversation(context.Background(), "alice", "bob", nil, console.New(&bytes.Buffer{}))
	assert.ErrorIs(t, err, domain.ErrConnectionClosed)

	_, err = w.Conversation(context.Background(), "alice", "alice", nil, console.New(&bytes.Buffer{}))
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}

func TestConversationRunsAgainstRelay(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/ws/", relay.NewHub(nil, nil))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Relay = srv.URL
	w, err := NewWire(cfg, &bytes.Buffer{})
	require.NoError(t, err)

	input := make(chan string)
	d, err := w.Conversation(context.Background(), "alice", "bob", input, console.New(&bytes.Buffer{}))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	input <- "exit"
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("conversation did not end")
	}
}
