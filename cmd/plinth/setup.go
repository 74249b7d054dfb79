package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"go.uber.org/zap"

	"github.com/eleven-am/plinth"
)

func newLogger(opts *globalOptions) (*zap.SugaredLogger, error) {
	format := plinth.LogFormat(opts.logFormat)
	if err := format.Validate(); err != nil {
		return nil, err
	}
	return plinth.NewLogger(opts.debug, format), nil
}

// loadStack reads the definition, resolves AWS credentials for its
// region, and wires a live Stack. Explicit key flags win over the
// ambient credential chain.
func loadStack(ctx context.Context, opts *globalOptions, logger *zap.SugaredLogger, stackOpts plinth.Options) (*plinth.Stack, *plinth.Config, error) {
	cfg, err := plinth.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if opts.accessKey != "" && opts.secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.accessKey, opts.secretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	return plinth.New(awsCfg, cfg, logger, stackOpts), cfg, nil
}
