package stack

import (
	"context"
	"fmt"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupSubnetGroup(ctx context.Context) (*domain.SubnetGroupData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindSubnetGroup(ctx, s.names.SubnetGroup())
}

// ensureSubnetGroup spans the database across both subnets. Identity is
// the provider-unique group name, so the effective value is the name
// itself either way.
func (s *Stack) ensureSubnetGroup(ctx context.Context, subnetIDs []string) (string, error) {
	name := s.names.SubnetGroup()

	existing, err := s.lookupSubnetGroup(ctx)
	if err != nil {
		return "", err
	}

	found := 0
	if existing != nil {
		found = 1
	}

	if domain.DesiredCount(found, 1) > 0 {
		created, err := s.cloud.CreateSubnetGroup(ctx, domain.SubnetGroupSpec{
			Name:        name,
			Description: fmt.Sprintf("Subnets for stack %s", s.cfg.Name),
			SubnetIDs:   subnetIDs,
			Tags:        s.tags(name),
		})
		if err != nil {
			return "", err
		}
		s.log.Infow("created db subnet group", "name", created.Name, "subnets", subnetIDs)
	} else {
		s.log.Infow("db subnet group already exists, skipping creation", "name", name)
	}

	return name, nil
}

func (s *Stack) destroySubnetGroup(ctx context.Context, file *state.File) error {
	name := s.names.SubnetGroup()
	if id := stateID(file, domain.KindSubnetGroup); id != "" {
		name = id
	}

	existing, err := s.cloud.FindSubnetGroup(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		s.log.Infow("db subnet group not found, skipping", "name", name)
		return nil
	}
	if err := s.cloud.DeleteSubnetGroup(ctx, name); err != nil {
		return err
	}
	s.log.Infow("deleted db subnet group", "name", name)
	return nil
}
