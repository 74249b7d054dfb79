package stack

import (
	"context"
	"fmt"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupInternetGateway(ctx context.Context) (*domain.InternetGatewayData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindInternetGateway(ctx, s.names.InternetGateway())
}

// ensureInternetGateway creates and attaches the gateway; a found
// gateway is assumed attached already.
func (s *Stack) ensureInternetGateway(ctx context.Context, vpcID string) (string, error) {
	name := s.names.InternetGateway()

	existing, err := s.lookupInternetGateway(ctx)
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
		created, err := s.cloud.CreateInternetGateway(ctx, domain.InternetGatewaySpec{
			VPCID: vpcID,
			Tags:  s.tags(name),
		})
		if err != nil {
			return "", err
		}
		createdID = created.ID
		s.log.Infow("created internet gateway", "name", name, "id", createdID, "vpc", vpcID)
	} else {
		s.log.Infow("internet gateway already exists, skipping creation", "name", name, "id", existingID)
	}

	return domain.EffectiveID(existingID, createdID), nil
}

// destroyInternetGateway detaches from every VPC it reports, then
// deletes.
func (s *Stack) destroyInternetGateway(ctx context.Context, file *state.File) error {
	igw, err := s.resolveInternetGateway(ctx, file)
	if err != nil {
		return err
	}
	if igw == nil {
		s.log.Infow("internet gateway not found, skipping", "name", s.names.InternetGateway())
		return nil
	}
	if !s.ownedByStack(igw.Tags) {
		return fmt.Errorf("internet gateway %s is not tagged for stack %s, refusing to delete", igw.ID, s.cfg.Name)
	}

	for _, vpcID := range igw.AttachedVPCIDs {
		if err := s.cloud.DetachInternetGateway(ctx, igw.ID, vpcID); err != nil {
			return err
		}
		s.log.Infow("detached internet gateway", "id", igw.ID, "vpc", vpcID)
	}
	if err := s.cloud.DeleteInternetGateway(ctx, igw.ID); err != nil {
		return err
	}
	s.log.Infow("deleted internet gateway", "id", igw.ID)
	return nil
}

func (s *Stack) resolveInternetGateway(ctx context.Context, file *state.File) (*domain.InternetGatewayData, error) {
	if id := stateID(file, domain.KindInternetGateway); id != "" {
		igw, err := s.cloud.GetInternetGateway(ctx, id)
		if err != nil {
			return nil, err
		}
		if igw != nil {
			return igw, nil
		}
	}
	return s.cloud.FindInternetGateway(ctx, s.names.InternetGateway())
}
