// Package stack is the provisioning engine: ordered ensure, plan and
// destroy logic for the network and database resources one deployment
// comprises. Every resource follows the same guarded contract: look up
// by external identity, create only when nothing was found, and hand
// downstream references the effective identity.
package stack

import (
	"go.uber.org/zap"

	"github.com/eleven-am/plinth/internal/config"
	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

// concurrencyLimit caps how many subnet or instance creations run at
// once.
const concurrencyLimit = 4

type Options struct {
	// Wait blocks Apply until the cluster and every instance report
	// available.
	Wait bool
	// StatePath overrides the default <name>.plinth.json location.
	StatePath string
}

type Stack struct {
	cfg   *config.Stack
	cloud domain.CloudAPI
	store *state.Store
	log   *zap.SugaredLogger
	names names
	opts  Options
}

func New(cfg *config.Stack, cloud domain.CloudAPI, logger *zap.SugaredLogger, opts Options) *Stack {
	if opts.StatePath == "" {
		opts.StatePath = cfg.Name + ".plinth.json"
	}
	return &Stack{
		cfg:   cfg,
		cloud: cloud,
		store: state.NewStore(opts.StatePath),
		log:   logger,
		names: names{stack: cfg.Name},
		opts:  opts,
	}
}

// StatePath reports where this stack reads and writes its state file.
func (s *Stack) StatePath() string {
	return s.store.Path()
}

// tags returns the tag set stamped on every resource the stack creates.
func (s *Stack) tags(name string) map[string]string {
	return map[string]string{
		domain.TagName:      name,
		domain.TagStack:     s.cfg.Name,
		domain.TagManagedBy: domain.ManagedByValue,
	}
}

// ownedByStack reports whether a live resource carries this stack's
// ownership tag. Destroy refuses to touch EC2 resources that fail this
// check, even when the Name tag matches.
func (s *Stack) ownedByStack(tags map[string]string) bool {
	return tags[domain.TagStack] == s.cfg.Name
}
