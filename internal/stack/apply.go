package stack

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

// deployed collects the effective identities an apply run resolved, for
// the state file.
type deployed struct {
	vpcID        string
	subnetIDs    []string
	gatewayID    string
	routeTableID string
	groupID      string
	subnetGroup  string
	clusterID    string
	instanceIDs  []string
}

// Apply walks the dependency order, ensuring each resource in turn and
// handing every step the effective identities of its dependencies. On
// success the resolved identities and outputs are written to the state
// file.
func (s *Stack) Apply(ctx context.Context) (*domain.Outputs, error) {
	identity, err := s.cloud.CallerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Infow("applying stack", "stack", s.cfg.Name, "region", s.cfg.Region,
		"account", identity.Account, "guarded", s.cfg.GuardExisting)

	var d deployed

	if d.vpcID, err = s.ensureVPC(ctx); err != nil {
		return nil, err
	}
	if d.subnetIDs, err = s.ensureSubnets(ctx, d.vpcID); err != nil {
		return nil, err
	}
	if d.gatewayID, err = s.ensureInternetGateway(ctx, d.vpcID); err != nil {
		return nil, err
	}
	if d.routeTableID, err = s.ensureRouteTable(ctx, d.vpcID, d.gatewayID, d.subnetIDs); err != nil {
		return nil, err
	}
	if d.groupID, err = s.ensureSecurityGroup(ctx, d.vpcID); err != nil {
		return nil, err
	}
	if d.subnetGroup, err = s.ensureSubnetGroup(ctx, d.subnetIDs); err != nil {
		return nil, err
	}
	if d.clusterID, err = s.ensureCluster(ctx, d.subnetGroup, d.groupID); err != nil {
		return nil, err
	}
	if d.instanceIDs, err = s.ensureInstances(ctx, d.clusterID); err != nil {
		return nil, err
	}

	if s.opts.Wait {
		if err := s.waitAvailable(ctx, d.clusterID, d.instanceIDs); err != nil {
			return nil, err
		}
	}

	outputs, err := s.clusterOutputs(ctx, d.clusterID)
	if err != nil {
		return nil, err
	}

	if err := s.saveState(d, outputs); err != nil {
		return nil, err
	}

	s.log.Infow("stack applied", "stack", s.cfg.Name, "endpoint", outputs.Endpoint)
	return outputs, nil
}

func (s *Stack) waitAvailable(ctx context.Context, clusterID string, instanceIDs []string) error {
	s.log.Infow("waiting for db cluster to become available", "id", clusterID)
	if err := s.cloud.WaitClusterAvailable(ctx, clusterID); err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit)
	for _, id := range instanceIDs {
		id := id
		g.Go(func() error {
			return s.cloud.WaitInstanceAvailable(gCtx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.log.Infow("db cluster and instances available", "id", clusterID)
	return nil
}

// saveState keeps the lineage of an existing file and layers the newly
// resolved identities over it.
func (s *Stack) saveState(d deployed, outputs *domain.Outputs) error {
	file, err := s.store.Load()
	if err != nil {
		return err
	}
	if file == nil {
		file = state.NewFile(s.cfg.Name, s.cfg.Region)
	}

	file.Record(domain.KindVPC, d.vpcID)
	file.Record(domain.KindSubnet, d.subnetIDs...)
	file.Record(domain.KindInternetGateway, d.gatewayID)
	file.Record(domain.KindRouteTable, d.routeTableID)
	file.Record(domain.KindSecurityGroup, d.groupID)
	file.Record(domain.KindSubnetGroup, d.subnetGroup)
	file.Record(domain.KindCluster, d.clusterID)
	file.Record(domain.KindInstance, d.instanceIDs...)
	file.Outputs = outputs

	if err := s.store.Save(file); err != nil {
		return err
	}
	s.log.Infow("state written", "path", s.store.Path(), "serial", file.Serial)
	return nil
}
