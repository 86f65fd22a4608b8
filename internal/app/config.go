package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Relay            string        `toml:"relay"`             // relay address, e.g. localhost:8000 or wss://relay.example
	Sign             bool          `toml:"sign"`              // sign outgoing messages
	RequireSignature bool          `toml:"require_signature"` // drop unsigned incoming messages
	LogLevel         string        `toml:"log_level"`         // logrus level name
	Debug            bool          `toml:"debug"`             // shorthand for log_level = "debug"
	DialTimeout      time.Duration `toml:"dial_timeout"`
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "warn",
		DialTimeout: 10 * time.Second,
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from SERVER_HOST and DEBUG.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("SERVER_HOST")); v != "" {
		c.Relay = v
	}
	if v := strings.TrimSpace(getenv("DEBUG")); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG=%q: %w", v, err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks the values that cannot be fixed up later.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("dial_timeout must be positive, got %s", c.DialTimeout)
	}
	return nil
}

// NewLogger builds the logrus logger described by cfg.
func (c Config) NewLogger(out io.Writer) (*logrus.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}

func (c Config) level() (logrus.Level, error) {
	if c.Debug {
		return logrus.DebugLevel, nil
	}
	if c.LogLevel == "" {
		return logrus.WarnLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
