package plinth

import (
	"github.com/eleven-am/plinth/internal/config"
	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/log"
	"github.com/eleven-am/plinth/internal/stack"
)

// Config is the declarative definition of one stack: a name, a region,
// the network layout, and the database shape. Load one from YAML with
// LoadConfig or start from DefaultConfig.
type Config = config.Stack

type Network = config.Network

type Database = config.Database

// Secret wraps a sensitive string. Every rendering path (fmt verbs,
// JSON, YAML) yields a redaction marker; only Value returns the
// plaintext.
type Secret = config.Secret

// NewSecret wraps a plaintext credential.
func NewSecret(v string) Secret {
	return config.NewSecret(v)
}

// Options tune how a Stack runs.
type Options = stack.Options

// Plan is the read-only preview of an apply run.
type Plan = stack.Plan

type Step = stack.Step

type Action = stack.Action

const (
	ActionCreate = stack.ActionCreate
	ActionKeep   = stack.ActionKeep
	ActionError  = stack.ActionError
)

// Outputs is what a deployed stack exposes: endpoints and port, never
// credentials.
type Outputs = domain.Outputs

// AmbiguousLookupError reports a guard lookup that matched more than
// one live resource.
type AmbiguousLookupError = domain.AmbiguousLookupError

// NotFoundError reports a resource that could not be resolved, live or
// in state.
type NotFoundError = domain.NotFoundError

// LogFormat selects the encoder for NewLogger.
type LogFormat = log.Format

const (
	LogFormatJSON    = log.FormatJSON
	LogFormatConsole = log.FormatConsole
)

// Port is the port document database clusters listen on.
const Port = domain.Port

// Environment variables honored by LoadConfig for the database
// credentials.
const (
	EnvMasterUsername = config.EnvMasterUsername
	EnvMasterPassword = config.EnvMasterPassword
)
