package stack

import (
	"context"
	"fmt"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func (s *Stack) lookupVPC(ctx context.Context) (*domain.VPCData, error) {
	if !s.cfg.GuardExisting {
		return nil, nil
	}
	return s.cloud.FindVPC(ctx, s.names.VPC())
}

// ensureVPC resolves the network boundary everything else hangs off.
func (s *Stack) ensureVPC(ctx context.Context) (string, error) {
	name := s.names.VPC()

	existing, err := s.lookupVPC(ctx)
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
		created, err := s.cloud.CreateVPC(ctx, domain.VPCSpec{
			CIDRBlock: s.cfg.Network.CIDRBlock,
			Tags:      s.tags(name),
		})
		if err != nil {
			return "", err
		}
		createdID = created.ID
		s.log.Infow("created vpc", "name", name, "id", createdID, "cidr", s.cfg.Network.CIDRBlock)
	} else {
		s.log.Infow("vpc already exists, skipping creation", "name", name, "id", existingID)
	}

	return domain.EffectiveID(existingID, createdID), nil
}

// destroyVPC deletes the network boundary last, after every dependent
// resource is gone.
func (s *Stack) destroyVPC(ctx context.Context, file *state.File) error {
	vpc, err := s.resolveVPC(ctx, file)
	if err != nil {
		return err
	}
	if vpc == nil {
		s.log.Infow("vpc not found, skipping", "name", s.names.VPC())
		return nil
	}
	if !s.ownedByStack(vpc.Tags) {
		return fmt.Errorf("vpc %s is not tagged for stack %s, refusing to delete", vpc.ID, s.cfg.Name)
	}
	if err := s.cloud.DeleteVPC(ctx, vpc.ID); err != nil {
		return err
	}
	s.log.Infow("deleted vpc", "id", vpc.ID)
	return nil
}

// resolveVPC prefers the identifier recorded in state and falls back to
// the Name-tag lookup. Either way the live resource is fetched so the
// ownership check sees current tags.
func (s *Stack) resolveVPC(ctx context.Context, file *state.File) (*domain.VPCData, error) {
	if id := stateID(file, domain.KindVPC); id != "" {
		vpc, err := s.cloud.GetVPC(ctx, id)
		if err != nil {
			return nil, err
		}
		if vpc != nil {
			return vpc, nil
		}
	}
	return s.cloud.FindVPC(ctx, s.names.VPC())
}

func stateID(file *state.File, kind string) string {
	if file == nil {
		return ""
	}
	return file.ID(kind)
}

func stateIDs(file *state.File, kind string) []string {
	if file == nil {
		return nil
	}
	return file.IDs(kind)
}
