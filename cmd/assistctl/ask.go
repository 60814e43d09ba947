package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/assistant/internal/adapter/orchestrator"
	"github.com/xiaot623/assistant/internal/domain"
)

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := orchestrator.NewGatewayClient(opts.gatewayURL, opts.timeout)
			result, err := client.Process(cmd.Context(), &domain.Message{
				Text:   strings.Join(args, " "),
				UserID: opts.userID,
			})
			if err != nil {
				return err
			}
			printResult(cmd, *result)
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, result domain.DispatchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "[%s] %s\n", result.AgentUsed, result.Response)
	if result.ShowCanvas {
		fmt.Fprintf(out, "(open the %s calendar)\n", result.CanvasKind)
	}
}
