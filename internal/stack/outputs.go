package stack

import (
	"context"

	"github.com/eleven-am/plinth/internal/domain"
)

// Outputs resolves the deployed cluster, state identifier first with the
// derived identifier as fallback, and returns its endpoint data.
func (s *Stack) Outputs(ctx context.Context) (*domain.Outputs, error) {
	file, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	id := domain.EffectiveID(stateID(file, domain.KindCluster), s.names.Cluster())
	return s.clusterOutputs(ctx, id)
}

// clusterOutputs re-reads the cluster live; right after an unwaited
// create the endpoint fields may still be settling.
func (s *Stack) clusterOutputs(ctx context.Context, clusterID string) (*domain.Outputs, error) {
	cluster, err := s.cloud.FindCluster(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	if cluster == nil {
		return nil, &domain.NotFoundError{Kind: domain.KindCluster, Name: clusterID}
	}

	port := cluster.Port
	if port == 0 {
		port = domain.Port
	}
	return &domain.Outputs{
		Endpoint:       cluster.Endpoint,
		ReaderEndpoint: cluster.ReaderEndpoint,
		Port:           port,
		ClusterStatus:  cluster.Status,
	}, nil
}
