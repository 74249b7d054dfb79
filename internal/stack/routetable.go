package stack

import (
	"context"
	"fmt"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupRouteTable(ctx context.Context) (*domain.RouteTableData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindRouteTable(ctx, s.names.RouteTable())
}

// ensureRouteTable creates the table, its default route to the gateway,
// and one association per subnet. The route and associations ride with
// the created table; a found table is taken as already wired.
func (s *Stack) ensureRouteTable(ctx context.Context, vpcID, gatewayID string, subnetIDs []string) (string, error) {
	name := s.names.RouteTable()

	existing, err := s.lookupRouteTable(ctx)
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
		created, err := s.cloud.CreateRouteTable(ctx, domain.RouteTableSpec{
			VPCID: vpcID,
			Tags:  s.tags(name),
		})
		if err != nil {
			return "", err
		}
		createdID = created.ID
		s.log.Infow("created route table", "name", name, "id", createdID, "vpc", vpcID)

		if err := s.cloud.CreateDefaultRoute(ctx, createdID, gatewayID); err != nil {
			return "", err
		}
		s.log.Infow("created default route", "routeTable", createdID, "destination", domain.AnywhereCIDR, "gateway", gatewayID)

		for _, subnetID := range subnetIDs {
			assocID, err := s.cloud.AssociateRouteTable(ctx, createdID, subnetID)
			if err != nil {
				return "", err
			}
			s.log.Infow("associated route table", "routeTable", createdID, "subnet", subnetID, "association", assocID)
		}
	} else {
		s.log.Infow("route table already exists, skipping creation", "name", name, "id", existingID)
	}

	return domain.EffectiveID(existingID, createdID), nil
}

// destroyRouteTable drops the subnet associations first; the main
// association belongs to the VPC and is left alone.
func (s *Stack) destroyRouteTable(ctx context.Context, file *state.File) error {
	rt, err := s.resolveRouteTable(ctx, file)
	if err != nil {
		return err
	}
	if rt == nil {
		s.log.Infow("route table not found, skipping", "name", s.names.RouteTable())
		return nil
	}
	if !s.ownedByStack(rt.Tags) {
		return fmt.Errorf("route table %s is not tagged for stack %s, refusing to delete", rt.ID, s.cfg.Name)
	}

	for _, assoc := range rt.Associations {
		if assoc.Main {
			continue
		}
		if err := s.cloud.DisassociateRouteTable(ctx, assoc.ID); err != nil {
			return err
		}
		s.log.Infow("disassociated route table", "routeTable", rt.ID, "association", assoc.ID)
	}
	if err := s.cloud.DeleteRouteTable(ctx, rt.ID); err != nil {
		return err
	}
	s.log.Infow("deleted route table", "id", rt.ID)
	return nil
}

func (s *Stack) resolveRouteTable(ctx context.Context, file *state.File) (*domain.RouteTableData, error) {
	if id := stateID(file, domain.KindRouteTable); id != "" {
		rt, err := s.cloud.GetRouteTable(ctx, id)
		if err != nil {
			return nil, err
		}
		if rt != nil {
			return rt, nil
		}
	}
	return s.cloud.FindRouteTable(ctx, s.names.RouteTable())
}
