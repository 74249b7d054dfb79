package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/eleven-am/plinth/internal/domain"
)

// Action is what an apply run would do for one resource.
type Action string

const (
	ActionCreate Action = "create"
	ActionKeep   Action = "keep"
	ActionError  Action = "error"
)

// Step is one resource's row in a plan.
type Step struct {
	Kind   string
	Name   string
	Action Action
	Detail string
}

// Plan is the read-only preview of an apply run.
type Plan struct {
	Stack   string
	Guarded bool
	Steps   []Step
}

// Counts tallies the plan by action.
func (p *Plan) Counts() (creates, keeps, errs int) {
	for _, st := range p.Steps {
		switch st.Action {
		case ActionCreate:
			creates++
		case ActionKeep:
			keeps++
		case ActionError:
			errs++
		}
	}
	return creates, keeps, errs
}

// Plan previews what Apply would do, resource by resource, without
// writing anything. An unguarded plan marks every resource create; a
// guarded plan performs the same lookups Apply would. Ambiguous lookups
// become error steps rather than aborting, so one bad tag does not hide
// the rest of the preview.
func (s *Stack) Plan(ctx context.Context) (*Plan, error) {
	plan := &Plan{Stack: s.cfg.Name, Guarded: s.cfg.GuardExisting}

	cidrs, err := domain.SubnetCIDRs(s.cfg.Network.CIDRBlock, domain.SubnetCount)
	if err != nil {
		return nil, err
	}

	step, err := s.planSingleton(ctx, domain.KindVPC, s.names.VPC(),
		fmt.Sprintf("cidr %s", s.cfg.Network.CIDRBlock),
		func(ctx context.Context) (string, error) {
			vpc, err := s.cloud.FindVPC(ctx, s.names.VPC())
			if err != nil || vpc == nil {
				return "", err
			}
			return vpc.ID, nil
		})
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	subnetSteps, err := s.planSubnets(ctx, cidrs)
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, subnetSteps...)

	step, err = s.planSingleton(ctx, domain.KindInternetGateway, s.names.InternetGateway(),
		"attached to vpc",
		func(ctx context.Context) (string, error) {
			igw, err := s.cloud.FindInternetGateway(ctx, s.names.InternetGateway())
			if err != nil || igw == nil {
				return "", err
			}
			return igw.ID, nil
		})
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	step, err = s.planSingleton(ctx, domain.KindRouteTable, s.names.RouteTable(),
		fmt.Sprintf("default route %s via internet gateway, %d associations", domain.AnywhereCIDR, domain.SubnetCount),
		func(ctx context.Context) (string, error) {
			rt, err := s.cloud.FindRouteTable(ctx, s.names.RouteTable())
			if err != nil || rt == nil {
				return "", err
			}
			return rt.ID, nil
		})
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	step, err = s.planSingleton(ctx, domain.KindSecurityGroup, s.names.SecurityGroup(),
		fmt.Sprintf("ingress tcp %d from %s, egress all", domain.Port, s.cfg.Network.AllowedIngress),
		func(ctx context.Context) (string, error) {
			sg, err := s.cloud.FindSecurityGroup(ctx, s.names.SecurityGroup())
			if err != nil || sg == nil {
				return "", err
			}
			return sg.ID, nil
		})
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	step, err = s.planSingleton(ctx, domain.KindSubnetGroup, s.names.SubnetGroup(),
		fmt.Sprintf("spanning %d subnets", domain.SubnetCount),
		func(ctx context.Context) (string, error) {
			group, err := s.cloud.FindSubnetGroup(ctx, s.names.SubnetGroup())
			if err != nil || group == nil {
				return "", err
			}
			return group.Name, nil
		})
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	step, err = s.planSingleton(ctx, domain.KindCluster, s.names.Cluster(),
		fmt.Sprintf("engine %s, port %d, %d day backups", domain.Engine, domain.Port, s.cfg.Database.BackupRetentionDays),
		func(ctx context.Context) (string, error) {
			cluster, err := s.cloud.FindCluster(ctx, s.names.Cluster())
			if err != nil || cluster == nil {
				return "", err
			}
			return cluster.ID, nil
		})
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, step)

	instanceSteps, err := s.planInstances(ctx)
	if err != nil {
		return nil, err
	}
	plan.Steps = append(plan.Steps, instanceSteps...)

	return plan, nil
}

// planSingleton classifies one single-identity resource. find returns
// the live identifier or "" when absent.
func (s *Stack) planSingleton(ctx context.Context, kind, name, createDetail string, find func(context.Context) (string, error)) (Step, error) {
	step := Step{Kind: kind, Name: name}
	if !s.cfg.GuardExisting {
		step.Action = ActionCreate
		step.Detail = createDetail
		return step, nil
	}

	id, err := find(ctx)
	if err != nil {
		var ambiguous *domain.AmbiguousLookupError
		if errors.As(err, &ambiguous) {
			step.Action = ActionError
			step.Detail = ambiguous.Error()
			return step, nil
		}
		return step, err
	}
	if id != "" {
		step.Action = ActionKeep
		step.Detail = id
		return step, nil
	}
	step.Action = ActionCreate
	step.Detail = createDetail
	return step, nil
}

func (s *Stack) planSubnets(ctx context.Context, cidrs []string) ([]Step, error) {
	names := s.names.Subnets(domain.SubnetCount)
	steps := make([]Step, 0, len(names))

	if !s.cfg.GuardExisting {
		for i, name := range names {
			steps = append(steps, Step{Kind: domain.KindSubnet, Name: name, Action: ActionCreate, Detail: fmt.Sprintf("cidr %s", cidrs[i])})
		}
		return steps, nil
	}

	found, err := s.cloud.FindSubnets(ctx, names)
	if err != nil {
		var ambiguous *domain.AmbiguousLookupError
		if errors.As(err, &ambiguous) {
			for _, name := range names {
				steps = append(steps, Step{Kind: domain.KindSubnet, Name: name, Action: ActionError, Detail: ambiguous.Error()})
			}
			return steps, nil
		}
		return nil, err
	}

	byName := make(map[string]string, len(found))
	for _, sn := range found {
		byName[sn.Tags[domain.TagName]] = sn.ID
	}

	for i, name := range names {
		step := Step{Kind: domain.KindSubnet, Name: name}
		switch {
		case byName[name] != "":
			step.Action = ActionKeep
			step.Detail = byName[name]
		case len(found) > 0:
			// The set guard suppresses creation even for the members it
			// did not match.
			step.Action = ActionKeep
			step.Detail = fmt.Sprintf("suppressed, %d live subnets found", len(found))
		default:
			step.Action = ActionCreate
			step.Detail = fmt.Sprintf("cidr %s", cidrs[i])
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (s *Stack) planInstances(ctx context.Context) ([]Step, error) {
	names := s.names.Instances(s.cfg.Database.InstanceCount)
	steps := make([]Step, 0, len(names))
	createDetail := fmt.Sprintf("class %s", s.cfg.Database.InstanceClass)

	if !s.cfg.GuardExisting {
		for _, name := range names {
			steps = append(steps, Step{Kind: domain.KindInstance, Name: name, Action: ActionCreate, Detail: createDetail})
		}
		return steps, nil
	}

	found, err := s.cloud.FindInstances(ctx, s.names.Cluster())
	if err != nil {
		return nil, err
	}

	byID := make(map[string]bool, len(found))
	for _, inst := range found {
		byID[inst.ID] = true
	}

	for _, name := range names {
		step := Step{Kind: domain.KindInstance, Name: name}
		switch {
		case byID[name]:
			step.Action = ActionKeep
			step.Detail = name
		case len(found) > 0:
			step.Action = ActionKeep
			step.Detail = fmt.Sprintf("suppressed, %d live instances found", len(found))
		default:
			step.Action = ActionCreate
			step.Detail = createDetail
		}
		steps = append(steps, step)
	}
	return steps, nil
}
