package stack

import (
	"context"
	"strings"
	"testing"

	"github.com/eleven-am/plinth/internal/domain"
)

func TestPlan_EmptyAccountAllCreate(t *testing.T) {
	cloud := newMockCloud()
	cfg := testConfig()
	s, _ := newTestStack(t, cfg, cloud, Options{})

	plan, err := s.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	wantSteps := 6 + domain.SubnetCount + cfg.Database.InstanceCount
	if len(plan.Steps) != wantSteps {
		t.Fatalf("plan has %d steps, want %d", len(plan.Steps), wantSteps)
	}
	creates, keeps, errs := plan.Counts()
	if creates != wantSteps || keeps != 0 || errs != 0 {
		t.Errorf("Counts() = (%d, %d, %d), want (%d, 0, 0)", creates, keeps, errs, wantSteps)
	}
	if !plan.Guarded {
		t.Error("plan not marked guarded")
	}
	if plan.Stack != "demo" {
		t.Errorf("plan stack = %q, want %q", plan.Stack, "demo")
	}

	ops := cloud.opsSnapshot()
	if n := countOps(ops, "Create") + countOps(ops, "Delete") + countOps(ops, "Authorize"); n != 0 {
		t.Errorf("plan issued %d write calls, want none", n)
	}
}

func TestPlan_AfterApplyAllKeep(t *testing.T) {
	cloud := newMockCloud()
	s, _ := newTestStack(t, testConfig(), cloud, Options{})
	ctx := context.Background()

	if _, err := s.Apply(ctx); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	opsBefore := len(cloud.opsSnapshot())

	plan, err := s.Plan(ctx)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	creates, keeps, errs := plan.Counts()
	if creates != 0 || errs != 0 || keeps != len(plan.Steps) {
		t.Errorf("Counts() = (%d, %d, %d), want every step kept", creates, keeps, errs)
	}

	var vpcID string
	for id := range cloud.vpcs {
		vpcID = id
	}
	first := plan.Steps[0]
	if first.Kind != domain.KindVPC || first.Action != ActionKeep || first.Detail != vpcID {
		t.Errorf("vpc step = %+v, want keep with id %s", first, vpcID)
	}

	opsDuring := cloud.opsSnapshot()[opsBefore:]
	if n := countOps(opsDuring, "Create") + countOps(opsDuring, "Delete") + countOps(opsDuring, "Authorize"); n != 0 {
		t.Errorf("plan issued %d write calls, want none", n)
	}
}

func TestPlan_UnguardedSkipsLookups(t *testing.T) {
	cloud := newMockCloud()
	cfg := testConfig()
	s, _ := newTestStack(t, cfg, cloud, Options{})
	ctx := context.Background()

	if _, err := s.Apply(ctx); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	opsBefore := len(cloud.opsSnapshot())

	cfg.GuardExisting = false
	plan, err := s.Plan(ctx)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	creates, keeps, errs := plan.Counts()
	if creates != len(plan.Steps) || keeps != 0 || errs != 0 {
		t.Errorf("Counts() = (%d, %d, %d), want every step create", creates, keeps, errs)
	}
	if plan.Guarded {
		t.Error("plan marked guarded with the guard off")
	}

	opsDuring := cloud.opsSnapshot()[opsBefore:]
	if n := countOps(opsDuring, "Find"); n != 0 {
		t.Errorf("unguarded plan issued %d lookups, want none", n)
	}
}

func TestPlan_AmbiguousBecomesErrorStep(t *testing.T) {
	cloud := newMockCloud()
	for _, id := range []string{"vpc-a", "vpc-b"} {
		cloud.vpcs[id] = &domain.VPCData{
			ID: id, CIDRBlock: "10.0.0.0/16", State: "available",
			Tags: map[string]string{domain.TagName: "demo-vpc"},
		}
	}
	s, _ := newTestStack(t, testConfig(), cloud, Options{})

	plan, err := s.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan() error = %v, ambiguity should not abort the preview", err)
	}

	first := plan.Steps[0]
	if first.Kind != domain.KindVPC || first.Action != ActionError {
		t.Errorf("vpc step = %+v, want an error step", first)
	}
	if !strings.Contains(first.Detail, "matched 2") {
		t.Errorf("vpc step detail = %q, want the ambiguity explained", first.Detail)
	}

	creates, _, errs := plan.Counts()
	if errs != 1 {
		t.Errorf("plan has %d error steps, want 1", errs)
	}
	if creates != len(plan.Steps)-1 {
		t.Errorf("plan has %d creates, want the remaining %d steps", creates, len(plan.Steps)-1)
	}
}

func TestPlan_SecurityGroupDetail(t *testing.T) {
	cloud := newMockCloud()
	cfg := testConfig()
	cfg.Network.AllowedIngress = "203.0.113.0/24"
	s, _ := newTestStack(t, cfg, cloud, Options{})

	plan, err := s.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	var sgStep *Step
	for i := range plan.Steps {
		if plan.Steps[i].Kind == domain.KindSecurityGroup {
			sgStep = &plan.Steps[i]
		}
	}
	if sgStep == nil {
		t.Fatal("plan has no security group step")
	}
	if !strings.Contains(sgStep.Detail, "203.0.113.0/24") {
		t.Errorf("security group detail = %q, want the allowed ingress cidr", sgStep.Detail)
	}
	if !strings.Contains(sgStep.Detail, "27017") {
		t.Errorf("security group detail = %q, want the cluster port", sgStep.Detail)
	}
}

func TestPlan_NeverLeaksPassword(t *testing.T) {
	cloud := newMockCloud()
	s, _ := newTestStack(t, testConfig(), cloud, Options{})

	plan, err := s.Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	for _, step := range plan.Steps {
		if strings.Contains(step.Detail, testPassword) || strings.Contains(step.Name, testPassword) {
			t.Errorf("step %+v leaks the master password", step)
		}
	}
}

func TestPlan_Counts(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Action: ActionCreate},
		{Action: ActionCreate},
		{Action: ActionKeep},
		{Action: ActionError},
	}}
	creates, keeps, errs := plan.Counts()
	if creates != 2 || keeps != 1 || errs != 1 {
		t.Errorf("Counts() = (%d, %d, %d), want (2, 1, 1)", creates, keeps, errs)
	}
}
