package stack

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupSubnets(ctx context.Context) ([]domain.SubnetData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindSubnets(ctx, s.names.Subnets(domain.SubnetCount))
}

// ensureSubnets places one subnet per derived sub-CIDR, each in its own
// availability zone. The set is guarded as a unit: any live member
// suppresses creation of the whole set.
func (s *Stack) ensureSubnets(ctx context.Context, vpcID string) ([]string, error) {
	existing, err := s.lookupSubnets(ctx)
	if err != nil {
		return nil, err
	}

	var existingIDs []string
	for _, sn := range existing {
		existingIDs = append(existingIDs, sn.ID)
	}

	var createdIDs []string
	if n := domain.DesiredCount(len(existing), domain.SubnetCount); n > 0 {
		cidrs, err := domain.SubnetCIDRs(s.cfg.Network.CIDRBlock, n)
		if err != nil {
			return nil, err
		}
		zones, err := s.cloud.AvailabilityZones(ctx)
		if err != nil {
			return nil, err
		}
		if len(zones) < n {
			return nil, fmt.Errorf("region %s has %d availability zones, need %d", s.cfg.Region, len(zones), n)
		}

		createdIDs = make([]string, n)
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(concurrencyLimit)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				name := s.names.Subnet(i)
				created, err := s.cloud.CreateSubnet(gCtx, domain.SubnetSpec{
					VPCID:            vpcID,
					CIDRBlock:        cidrs[i],
					AvailabilityZone: zones[i].Name,
					Tags:             s.tags(name),
				})
				if err != nil {
					return err
				}
				createdIDs[i] = created.ID
				s.log.Infow("created subnet", "name", name, "id", created.ID, "cidr", cidrs[i], "zone", zones[i].Name)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		s.log.Infow("subnets already exist, skipping creation", "ids", existingIDs)
	}

	return domain.EffectiveIDs(existingIDs, createdIDs), nil
}

func (s *Stack) destroySubnets(ctx context.Context, file *state.File) error {
	subnets, err := s.resolveSubnets(ctx, file)
	if err != nil {
		return err
	}
	if len(subnets) == 0 {
		s.log.Infow("subnets not found, skipping")
		return nil
	}

	for _, sn := range subnets {
		if !s.ownedByStack(sn.Tags) {
			return fmt.Errorf("subnet %s is not tagged for stack %s, refusing to delete", sn.ID, s.cfg.Name)
		}
		if err := s.cloud.DeleteSubnet(ctx, sn.ID); err != nil {
			return err
		}
		s.log.Infow("deleted subnet", "id", sn.ID)
	}
	return nil
}

func (s *Stack) resolveSubnets(ctx context.Context, file *state.File) ([]domain.SubnetData, error) {
	var out []domain.SubnetData
	for _, id := range stateIDs(file, domain.KindSubnet) {
		sn, err := s.cloud.GetSubnet(ctx, id)
		if err != nil {
			return nil, err
		}
		if sn != nil {
			out = append(out, *sn)
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	return s.cloud.FindSubnets(ctx, s.names.Subnets(domain.SubnetCount))
}
