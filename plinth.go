// Package plinth provisions a document database cluster and the network
// it lives in on AWS from one declarative definition. Every resource is
// looked up by its external identity before it is created, so applying
// the same definition twice never duplicates anything: what exists is
// adopted, what is missing is created, and downstream resources always
// reference whichever of the two won.
package plinth

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	internalaws "github.com/eleven-am/plinth/internal/aws"
	"github.com/eleven-am/plinth/internal/config"
	"github.com/eleven-am/plinth/internal/log"
	"github.com/eleven-am/plinth/internal/stack"
)

// Stack drives one deployment: Plan previews, Apply provisions, Outputs
// reads the endpoints, Destroy tears down.
type Stack = stack.Stack

// New wires a Stack against live AWS clients built from awsCfg. The
// definition must already be validated; LoadConfig returns validated
// definitions.
func New(awsCfg aws.Config, cfg *Config, logger *zap.SugaredLogger, opts Options) *Stack {
	return stack.New(cfg, internalaws.NewClient(awsCfg), logger, opts)
}

// LoadConfig reads a YAML stack definition, layers it over the defaults,
// applies credential overrides from the environment, and validates the
// result.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a definition with every optional field filled
// in. Name, Region, and the database credentials still have to be set.
func DefaultConfig() *Config {
	return config.Default()
}

// NewLogger builds the zap logger the engine expects. Debug widens the
// level; format picks console or JSON encoding. Output goes to stderr.
func NewLogger(debug bool, format LogFormat) *zap.SugaredLogger {
	return log.New(debug, format).Sugar()
}

// Apply provisions the stack described by cfg and returns its outputs.
// It is a convenience for callers that do not need to hold a Stack.
func Apply(ctx context.Context, awsCfg aws.Config, cfg *Config, logger *zap.SugaredLogger, opts Options) (*Outputs, error) {
	return New(awsCfg, cfg, logger, opts).Apply(ctx)
}

// Destroy tears down the stack described by cfg.
func Destroy(ctx context.Context, awsCfg aws.Config, cfg *Config, logger *zap.SugaredLogger, opts Options) error {
	return New(awsCfg, cfg, logger, opts).Destroy(ctx)
}
