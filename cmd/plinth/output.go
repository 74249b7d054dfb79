package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eleven-am/plinth"
)

func newOutputCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON    bool
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "output",
		Short: "Print the deployed cluster endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutput(cmd.Context(), opts, asJSON, statePath)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print outputs as JSON")
	cmd.Flags().StringVar(&statePath, "state", "", "State file path (default: <name>.plinth.json)")

	return cmd
}

func runOutput(ctx context.Context, opts *globalOptions, asJSON bool, statePath string) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	s, _, err := loadStack(ctx, opts, logger, plinth.Options{StatePath: statePath})
	if err != nil {
		return err
	}

	outputs, err := s.Outputs(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}

	fmt.Printf("endpoint:        %s\n", outputs.Endpoint)
	if outputs.ReaderEndpoint != "" {
		fmt.Printf("reader endpoint: %s\n", outputs.ReaderEndpoint)
	}
	fmt.Printf("port:            %d\n", outputs.Port)
	fmt.Printf("status:          %s\n", outputs.ClusterStatus)
	return nil
}
