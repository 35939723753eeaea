package labels

import "testing"

func TestNewLabelBuilder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		clusterName string
	}{
		{"simple cluster name", "my-cluster"},
		{"single word", "web"},
		{"empty string", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			labels := NewLabelBuilder(tt.clusterName).Build()

			if labels[KeyCluster] != tt.clusterName {
				t.Errorf("expected %s=%q, got %q", KeyCluster, tt.clusterName, labels[KeyCluster])
			}
			if labels[KeyManagedBy] != ManagedByDevctlKind {
				t.Errorf("expected %s=%q, got %q", KeyManagedBy, ManagedByDevctlKind, labels[KeyManagedBy])
			}
		})
	}
}

func TestLabelBuilder_WithNetworkAndMerge(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("web").
		WithNetwork("kind-net-web").
		Merge(map[string]string{"team": "platform"}).
		Build()

	if labels[KeyNetwork] != "kind-net-web" {
		t.Errorf("expected network label, got %q", labels[KeyNetwork])
	}
	if labels["team"] != "platform" {
		t.Errorf("expected merged label, got %q", labels["team"])
	}
}

func TestLabelBuilder_BuildReturnsCopy(t *testing.T) {
	t.Parallel()
	lb := NewLabelBuilder("web")
	first := lb.Build()
	first["mutated"] = "yes"

	if _, ok := lb.Build()["mutated"]; ok {
		t.Error("Build must return a copy")
	}
}
