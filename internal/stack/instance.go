package stack

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupInstances(ctx context.Context, clusterID string) ([]domain.InstanceData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindInstances(ctx, clusterID)
}

// ensureInstances provisions the cluster members. Like subnets they are
// guarded as a set: any live member of the cluster suppresses creation
// of the whole set.
func (s *Stack) ensureInstances(ctx context.Context, clusterID string) ([]string, error) {
	existing, err := s.lookupInstances(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	var existingIDs []string
	for _, inst := range existing {
		existingIDs = append(existingIDs, inst.ID)
	}

	var createdIDs []string
	if n := domain.DesiredCount(len(existing), s.cfg.Database.InstanceCount); n > 0 {
		createdIDs = make([]string, n)
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(concurrencyLimit)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				id := s.names.Instance(i)
				created, err := s.cloud.CreateInstance(gCtx, domain.InstanceSpec{
					ID:        id,
					ClusterID: clusterID,
					Class:     s.cfg.Database.InstanceClass,
					Tags:      s.tags(id),
				})
				if err != nil {
					return err
				}
				createdIDs[i] = created.ID
				s.log.Infow("created db instance", "id", created.ID, "cluster", clusterID, "class", s.cfg.Database.InstanceClass)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		s.log.Infow("db instances already exist, skipping creation", "ids", existingIDs)
	}

	return domain.EffectiveIDs(existingIDs, createdIDs), nil
}

// destroyInstances removes every cluster member concurrently and blocks
// until the provider reports them gone; the cluster delete is rejected
// while members remain.
func (s *Stack) destroyInstances(ctx context.Context, file *state.File) error {
	clusterID := s.names.Cluster()
	if stateful := stateID(file, domain.KindCluster); stateful != "" {
		clusterID = stateful
	}

	instances, err := s.cloud.FindInstances(ctx, clusterID)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		s.log.Infow("db instances not found, skipping", "cluster", clusterID)
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrencyLimit)
	for _, inst := range instances {
		inst := inst
		g.Go(func() error {
			if err := s.cloud.DeleteInstance(gCtx, inst.ID); err != nil {
				return err
			}
			s.log.Infow("deleting db instance", "id", inst.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.cloud.WaitInstancesDeleted(ctx, clusterID); err != nil {
		return err
	}
	s.log.Infow("deleted db instances", "cluster", clusterID, "count", len(instances))
	return nil
}
