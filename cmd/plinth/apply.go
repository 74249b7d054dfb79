package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/plinth"
)

func newApplyCmd(opts *globalOptions) *cobra.Command {
	var (
		wait      bool
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Provision the stack, creating only what does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.Context(), opts, wait, statePath)
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the cluster and every instance report available")
	cmd.Flags().StringVar(&statePath, "state", "", "State file path (default: <name>.plinth.json)")

	return cmd
}

func runApply(ctx context.Context, opts *globalOptions, wait bool, statePath string) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	s, _, err := loadStack(ctx, opts, logger, plinth.Options{Wait: wait, StatePath: statePath})
	if err != nil {
		return err
	}

	outputs, err := s.Apply(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nendpoint: %s:%d (%s)\n", outputs.Endpoint, outputs.Port, outputs.ClusterStatus)
	fmt.Printf("state:    %s\n", s.StatePath())
	return nil
}
