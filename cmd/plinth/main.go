// Command plinth provisions a document database cluster and the network
// it lives in on AWS from one declarative YAML definition.
//
// Usage:
//
//	plinth plan --config stack.yaml       Preview what apply would do
//	plinth apply --config stack.yaml      Provision the stack
//	plinth output --config stack.yaml     Print the deployed endpoints
//	plinth destroy --config stack.yaml    Tear the stack down
//	plinth version                        Show version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags every subcommand shares.
type globalOptions struct {
	configPath string
	debug      bool
	logFormat  string
	accessKey  string
	secretKey  string
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "plinth",
		Short: "Provision a document database stack on AWS",
		Long: `plinth provisions a DocumentDB cluster and the VPC scaffolding it needs
from one declarative YAML definition. Every resource is looked up before
it is created, so re-running apply adopts what already exists instead of
duplicating it.

    plinth apply --config stack.yaml`,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "stack.yaml", "Path to the stack definition")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&opts.logFormat, "log-format", "console", "Log format: console or json")
	flags.StringVar(&opts.accessKey, "aws-access-key-id", "", "AWS access key ID (default: ambient credentials)")
	flags.StringVar(&opts.secretKey, "aws-secret-access-key", "", "AWS secret access key")

	rootCmd.AddCommand(
		newPlanCmd(opts),
		newApplyCmd(opts),
		newOutputCmd(opts),
		newDestroyCmd(opts),
		newVersionCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
