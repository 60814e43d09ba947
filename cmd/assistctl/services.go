package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xiaot623/assistant/internal/adapter/toolfactory"
	"github.com/xiaot623/assistant/internal/domain"
)

func newServicesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage generated tool services",
	}
	cmd.AddCommand(newServicesListCmd(opts), newServicesCreateCmd(opts), newServicesDeleteCmd(opts))
	return cmd
}

func newServicesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := toolfactory.NewClient(opts.gatewayURL, opts.timeout).ListServices(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPORT\tSTATUS\tENDPOINTS")
			for _, s := range services {
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", s.Name, s.Port, s.Status, len(s.Endpoints))
			}
			return w.Flush()
		},
	}
}

func newServicesCreateCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create -f FILE",
		Short: "Generate a service from a YAML tool declaration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := loadRequest(file)
			if err != nil {
				return err
			}
			resp, err := toolfactory.NewClient(opts.gatewayURL, opts.timeout).CreateService(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (port %d, %s)\n", resp.ServiceName, resp.Port, resp.Status)
			for _, e := range resp.Endpoints {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with agentName, agentType and tools")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newServicesDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := toolfactory.NewClient(opts.gatewayURL, opts.timeout).DeleteService(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service %s removed\n", args[0])
			return nil
		},
	}
}

func loadRequest(path string) (*domain.ServiceGenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var req domain.ServiceGenerationRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &req, nil
}
