package stack

import "context"

// Destroy tears the stack down in the exact reverse of the apply order.
// Identifiers come from the state file when present, with Name-tag
// lookups as fallback, and EC2 resources are only deleted when they
// carry this stack's ownership tag. Absent resources are skipped, so a
// partial destroy can be re-run.
func (s *Stack) Destroy(ctx context.Context) error {
	identity, err := s.cloud.CallerIdentity(ctx)
	if err != nil {
		return err
	}
	s.log.Infow("destroying stack", "stack", s.cfg.Name, "region", s.cfg.Region, "account", identity.Account)

	file, err := s.store.Load()
	if err != nil {
		return err
	}
	if file == nil {
		s.log.Infow("no state file, resolving resources by name", "stack", s.cfg.Name)
	}

	if err := s.destroyInstances(ctx, file); err != nil {
		return err
	}
	if err := s.destroyCluster(ctx, file); err != nil {
		return err
	}
	if err := s.destroySubnetGroup(ctx, file); err != nil {
		return err
	}
	if err := s.destroySecurityGroup(ctx, file); err != nil {
		return err
	}
	if err := s.destroyRouteTable(ctx, file); err != nil {
		return err
	}
	if err := s.destroyInternetGateway(ctx, file); err != nil {
		return err
	}
	if err := s.destroySubnets(ctx, file); err != nil {
		return err
	}
	if err := s.destroyVPC(ctx, file); err != nil {
		return err
	}

	if err := s.store.Remove(); err != nil {
		return err
	}
	s.log.Infow("stack destroyed", "stack", s.cfg.Name)
	return nil
}
