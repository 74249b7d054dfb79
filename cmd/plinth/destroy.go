package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eleven-am/plinth"
)

func newDestroyCmd(opts *globalOptions) *cobra.Command {
	var (
		yes       bool
		statePath string
	)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Tear the stack down in reverse dependency order",
		Long: `Destroy deletes every resource the stack comprises, database included.
Resources that do not carry the stack's ownership tags are refused, and
resources that are already gone are skipped, so a partial destroy can be
re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDestroy(cmd.Context(), opts, yes, statePath)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&statePath, "state", "", "State file path (default: <name>.plinth.json)")

	return cmd
}

func runDestroy(ctx context.Context, opts *globalOptions, yes bool, statePath string) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	s, cfg, err := loadStack(ctx, opts, logger, plinth.Options{StatePath: statePath})
	if err != nil {
		return err
	}

	if !yes {
		fmt.Printf("This deletes every resource of stack %q in %s, including the database and its data.\n", cfg.Name, cfg.Region)
		fmt.Print("Type the stack name to confirm: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if strings.TrimSpace(line) != cfg.Name {
			return fmt.Errorf("confirmation does not match stack name %q, aborting", cfg.Name)
		}
	}

	return s.Destroy(ctx)
}
