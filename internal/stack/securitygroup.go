package stack

import (
	"context"
	"fmt"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupSecurityGroup(ctx context.Context) (*domain.SecurityGroupData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindSecurityGroup(ctx, s.names.SecurityGroup())
}

// ensureSecurityGroup creates the group with exactly one ingress rule,
// TCP 27017 from the configured CIDR, plus allow-all egress. Rules ride
// with the created group; a found group keeps whatever rules it has.
func (s *Stack) ensureSecurityGroup(ctx context.Context, vpcID string) (string, error) {
	name := s.names.SecurityGroup()

	existing, err := s.lookupSecurityGroup(ctx)
	if err != nil {
		return "", err
	}

	existingID := ""
	found := 0
	if existing != nil {
		existingID = existing.ID
		found = 1
	}

	createdID := ""
	if domain.DesiredCount(found, 1) > 0 {
		created, err := s.cloud.CreateSecurityGroup(ctx, domain.SecurityGroupSpec{
			Name:        name,
			Description: fmt.Sprintf("Document database access for stack %s", s.cfg.Name),
			VPCID:       vpcID,
			Tags:        s.tags(name),
		})
		if err != nil {
			return "", err
		}
		createdID = created.ID
		s.log.Infow("created security group", "name", name, "id", createdID, "vpc", vpcID)

		if err := s.cloud.AuthorizeIngress(ctx, domain.SecurityGroupRuleSpec{
			GroupID:  createdID,
			Protocol: "tcp",
			FromPort: domain.Port,
			ToPort:   domain.Port,
			CIDR:     s.cfg.Network.AllowedIngress,
		}); err != nil {
			return "", err
		}
		s.log.Infow("authorized ingress", "group", createdID, "port", domain.Port, "cidr", s.cfg.Network.AllowedIngress)

		if err := s.cloud.AuthorizeEgressAll(ctx, createdID); err != nil {
			return "", err
		}
		s.log.Infow("authorized egress", "group", createdID, "cidr", domain.AnywhereCIDR)
	} else {
		s.log.Infow("security group already exists, skipping creation", "name", name, "id", existingID)
	}

	return domain.EffectiveID(existingID, createdID), nil
}

func (s *Stack) destroySecurityGroup(ctx context.Context, file *state.File) error {
	sg, err := s.resolveSecurityGroup(ctx, file)
	if err != nil {
		return err
	}
	if sg == nil {
		s.log.Infow("security group not found, skipping", "name", s.names.SecurityGroup())
		return nil
	}
	if !s.ownedByStack(sg.Tags) {
		return fmt.Errorf("security group %s is not tagged for stack %s, refusing to delete", sg.ID, s.cfg.Name)
	}
	if err := s.cloud.DeleteSecurityGroup(ctx, sg.ID); err != nil {
		return err
	}
	s.log.Infow("deleted security group", "id", sg.ID)
	return nil
}

func (s *Stack) resolveSecurityGroup(ctx context.Context, file *state.File) (*domain.SecurityGroupData, error) {
	if id := stateID(file, domain.KindSecurityGroup); id != "" {
		sg, err := s.cloud.GetSecurityGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		if sg != nil {
			return sg, nil
		}
	}
	return s.cloud.FindSecurityGroup(ctx, s.names.SecurityGroup())
}
