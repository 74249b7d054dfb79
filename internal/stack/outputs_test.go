package stack

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/eleven-am/plinth/internal/domain"
	"github.com/eleven-am/plinth/internal/state"
)

func TestOutputs_AfterApply(t *testing.T) {
	cloud := newMockCloud()
	s, _ := newTestStack(t, testConfig(), cloud, Options{})
	ctx := context.Background()

	applied, err := s.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, err := s.Outputs(ctx)
	if err != nil {
		t.Fatalf("Outputs() error = %v", err)
	}
	if got.Endpoint != applied.Endpoint {
		t.Errorf("endpoint = %q, want %q", got.Endpoint, applied.Endpoint)
	}
	if got.ReaderEndpoint == "" {
		t.Error("reader endpoint is empty")
	}
	if got.Port != domain.Port {
		t.Errorf("port = %d, want %d", got.Port, domain.Port)
	}
}

func TestOutputs_MissingCluster(t *testing.T) {
	cloud := newMockCloud()
	s, _ := newTestStack(t, testConfig(), cloud, Options{})

	_, err := s.Outputs(context.Background())
	if err == nil {
		t.Fatal("Outputs() succeeded with no cluster deployed")
	}
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want a not found error", err)
	}
	if notFound.Kind != domain.KindCluster {
		t.Errorf("kind = %q, want %q", notFound.Kind, domain.KindCluster)
	}
	if notFound.Name != "demo-cluster" {
		t.Errorf("name = %q, want the derived identifier", notFound.Name)
	}
}

func TestOutputs_PrefersStateIdentifier(t *testing.T) {
	cloud := newMockCloud()
	cloud.clusters["legacy-cluster"] = &domain.ClusterData{
		ID:       "legacy-cluster",
		Status:   "available",
		Endpoint: "legacy-cluster.cluster-mock0001.us-east-1.docdb.amazonaws.com",
		Port:     domain.Port,
	}

	path := filepath.Join(t.TempDir(), "demo.plinth.json")
	file := state.NewFile("demo", "us-east-1")
	file.Record(domain.KindCluster, "legacy-cluster")
	if err := state.NewStore(path).Save(file); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	s, _ := newTestStack(t, testConfig(), cloud, Options{StatePath: path})
	got, err := s.Outputs(context.Background())
	if err != nil {
		t.Fatalf("Outputs() error = %v", err)
	}
	if got.Endpoint != "legacy-cluster.cluster-mock0001.us-east-1.docdb.amazonaws.com" {
		t.Errorf("endpoint = %q, want the cluster recorded in state", got.Endpoint)
	}
}

func TestOutputs_DefaultsPortWhileSettling(t *testing.T) {
	cloud := newMockCloud()
	cloud.clusters["demo-cluster"] = &domain.ClusterData{
		ID:     "demo-cluster",
		Status: "creating",
	}
	s, _ := newTestStack(t, testConfig(), cloud, Options{})

	got, err := s.Outputs(context.Background())
	if err != nil {
		t.Fatalf("Outputs() error = %v", err)
	}
	if got.Port != domain.Port {
		t.Errorf("port = %d, want the engine default %d", got.Port, domain.Port)
	}
}
