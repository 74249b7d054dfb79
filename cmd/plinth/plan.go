package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/eleven-am/plinth"
)

func newPlanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Preview what apply would create, keep, or flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts)
		},
	}
}

func runPlan(ctx context.Context, opts *globalOptions) error {
	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	s, _, err := loadStack(ctx, opts, logger, plinth.Options{})
	if err != nil {
		return err
	}

	plan, err := s.Plan(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "Name", "Action", "Detail"})
	table.SetAutoWrapText(false)
	for _, step := range plan.Steps {
		table.Append([]string{step.Kind, step.Name, string(step.Action), step.Detail})
	}
	table.Render()

	creates, keeps, errs := plan.Counts()
	fmt.Printf("\nPlan for stack %s (guard existing: %v): %d to create, %d to keep, %d errors\n",
		plan.Stack, plan.Guarded, creates, keeps, errs)
	if errs > 0 {
		return fmt.Errorf("%d resources need attention before apply can run", errs)
	}
	return nil
}
