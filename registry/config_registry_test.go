package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adapters.yaml")
	contents := `
adapters:
  python:
    - command: debugpy-adapter
      args: ["--port", "0"]
      weight: 10
    - addr: "127.0.0.1:5678"
      weight: 5
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reg, err := LoadConfigRegistry(path)
	if err != nil {
		t.Fatalf("LoadConfigRegistry: %v", err)
	}

	instances, err := reg.Discover("python")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if instances[0].Command != "debugpy-adapter" || instances[0].AdapterID != "python" {
		t.Fatalf("unexpected first instance: %+v", instances[0])
	}
	if instances[1].Addr != "127.0.0.1:5678" || instances[1].Weight != 5 {
		t.Fatalf("unexpected second instance: %+v", instances[1])
	}

	if _, err := reg.Discover("nonexistent"); err != nil {
		t.Fatalf("expected no error for unknown adapter ID, got %v", err)
	}
}
