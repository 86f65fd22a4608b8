package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cipherlink/internal/console"
	"cipherlink/internal/domain"
	"cipherlink/internal/services/chat"
)

// chatCmd connects to the relay as <user>, paired with <recipient>, and runs
// the conversation until either side leaves.
func chatCmd() *cobra.Command {
	var sign, requireSig bool

	cmd := &cobra.Command{
		Use:   "chat <user> <recipient>",
		Short: "Start an encrypted conversation with another user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			self, peer := domain.Username(args[0]), domain.Username(args[1])
			if cmd.Flags().Changed("sign") {
				wire.Config.Sign = sign
			}
			if cmd.Flags().Changed("require-signature") {
				wire.Config.RequireSignature = requireSig
			}

			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())
			if wire.Config.Relay == "" {
				addr, err := promptRelay(in, out)
				if err != nil {
					return err
				}
				wire.Config.Relay = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ui := console.New(out)
			d, err := wire.Conversation(ctx, self, peer, ui.Lines(ctx, in), ui)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", wire.Config.Relay, err)
			}
			fmt.Fprintf(out, "Connected to %s as %s, waiting for %s. Type %q to leave.\n",
				wire.Config.Relay, self, peer, chat.ExitCommand)
			ui.Prompt()

			err = d.Run(ctx)
			fmt.Fprintln(out)
			switch {
			case err == nil:
				fmt.Fprintln(out, "Conversation closed.")
			case errors.Is(err, chat.ErrPeerLeft):
				fmt.Fprintf(out, "%s left the conversation.\n", peer)
			case errors.Is(err, domain.ErrConnectionClosed):
				fmt.Fprintln(out, "Connection to the relay was lost.")
			case errors.Is(err, context.Canceled):
				fmt.Fprintln(out, "Interrupted.")
			default:
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sign, "sign", false, "sign outgoing messages")
	cmd.Flags().BoolVar(&requireSig, "require-signature", false, "drop incoming messages that are not signed")
	return cmd
}

func promptRelay(in *bufio.Reader, out io.Writer) (string, error) {
	for {
		fmt.Fprint(out, "Relay address: ")
		line, err := in.ReadString('\n')
		if addr := strings.TrimSpace(line); addr != "" {
			return addr, nil
		}
		if err != nil {
			return "", fmt.Errorf("no relay address given: %w", err)
		}
	}
}
