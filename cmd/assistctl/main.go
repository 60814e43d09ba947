// Command assistctl talks to the assistant platform through its gateway.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	gatewayURL string
	userID     string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "assistctl",
		Short:         "Command line client for the assistant platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.gatewayURL, "gateway", envOr("ASSISTANT_GATEWAY", "http://localhost:8000"), "gateway base URL")
	root.PersistentFlags().StringVar(&opts.userID, "user", envOr("USER", "cli"), "user id sent with messages")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "request timeout")

	root.AddCommand(newAskCmd(opts), newChatCmd(opts), newServicesCmd(opts))
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
