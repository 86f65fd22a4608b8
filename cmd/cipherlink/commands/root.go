package commands

import (
	"os"

	"github.com/spf13/cobra"

	"cipherlink/internal/app"
)

var (
	configPath string
	relayAddr  string
	logLevel   string
	debug      bool

	cfg  app.Config
	wire *app.Wire
)

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:          "cipherlink",
		Short:        "End-to-end encrypted chat through an untrusted relay",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyEnv(os.Getenv); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("relay") {
				cfg.Relay = relayAddr
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("debug") {
				cfg.Debug = debug
			}
			wire, err = app.NewWire(cfg, cmd.ErrOrStderr())
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a TOML config file")
	pf.StringVar(&relayAddr, "relay", "", "relay address (e.g. localhost:8000 or wss://relay.example); overrides SERVER_HOST")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(chatCmd(), versionCmd())
	return root.Execute()
}
