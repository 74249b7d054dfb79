package stack

import (
	"context"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupCluster(ctx context.Context) (*domain.ClusterData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindCluster(ctx, s.names.Cluster())
}

// ensureCluster provisions the document database cluster. Identity is
// the provider-unique cluster identifier, so the effective value is the
// identifier itself either way. The master password is unwrapped here,
// at the create boundary, and nowhere else.
func (s *Stack) ensureCluster(ctx context.Context, subnetGroup, securityGroupID string) (string, error) {
	id := s.names.Cluster()

	existing, err := s.lookupCluster(ctx)
	if err != nil {
		return "", err
	}

	found := 0
	if existing != nil {
		found = 1
	}

	if domain.DesiredCount(found, 1) > 0 {
		created, err := s.cloud.CreateCluster(ctx, domain.ClusterSpec{
			ID:                  id,
			MasterUsername:      s.cfg.Database.MasterUsername,
			MasterPassword:      s.cfg.Database.MasterPassword.Value(),
			BackupRetentionDays: s.cfg.Database.BackupRetentionDays,
			BackupWindow:        s.cfg.Database.BackupWindow,
			Port:                domain.Port,
			SubnetGroup:         subnetGroup,
			SecurityGroupIDs:    []string{securityGroupID},
			Tags:                s.tags(id),
		})
		if err != nil {
			return "", err
		}
		s.log.Infow("created db cluster", "id", created.ID, "port", domain.Port,
			"backupRetentionDays", s.cfg.Database.BackupRetentionDays, "backupWindow", s.cfg.Database.BackupWindow)
	} else {
		s.log.Infow("db cluster already exists, skipping creation", "id", id)
	}

	return id, nil
}

// destroyCluster deletes the cluster and blocks until the provider
// reports it gone; the subnet group cannot be removed while a cluster
// still references it.
func (s *Stack) destroyCluster(ctx context.Context, file *state.File) error {
	id := s.names.Cluster()
	if stateful := stateID(file, domain.KindCluster); stateful != "" {
		id = stateful
	}

	existing, err := s.cloud.FindCluster(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		s.log.Infow("db cluster not found, skipping", "id", id)
		return nil
	}

	if err := s.cloud.DeleteCluster(ctx, id); err != nil {
		return err
	}
	s.log.Infow("deleting db cluster", "id", id)

	if err := s.cloud.WaitClusterDeleted(ctx, id); err != nil {
		return err
	}
	s.log.Infow("deleted db cluster", "id", id)
	return nil
}
