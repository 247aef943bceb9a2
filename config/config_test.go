package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load([]byte(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Top != 10 {
		t.Errorf("Top = %d, want default 10", cfg.Top)
	}
	if cfg.UseLatestWhenNotRequired {
		t.Errorf("UseLatestWhenNotRequired default should be false")
	}
	if cfg.SnapshotDir != ".cartwheel-cache" {
		t.Errorf("SnapshotDir = %q, want default .cartwheel-cache", cfg.SnapshotDir)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want default 1", cfg.Concurrency)
	}
}

func TestLoadOverridesAllFields(t *testing.T) {
	doc := []byte(`
top = 25
use_latest_when_not_required = true
use_cache = true
index_base_url = "https://example.test/pypi"
snapshot_dir = "/var/cache/cartwheel"
concurrency = 8
`)
	cfg, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Top != 25 {
		t.Errorf("Top = %d, want 25", cfg.Top)
	}
	if !cfg.UseLatestWhenNotRequired {
		t.Errorf("UseLatestWhenNotRequired = false, want true")
	}
	if !cfg.UseCache {
		t.Errorf("UseCache = false, want true")
	}
	if cfg.IndexBaseURL != "https://example.test/pypi" {
		t.Errorf("IndexBaseURL = %q, unexpected", cfg.IndexBaseURL)
	}
	if cfg.SnapshotDir != "/var/cache/cartwheel" {
		t.Errorf("SnapshotDir = %q, unexpected", cfg.SnapshotDir)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
}

func TestLoadRejectsWrongType(t *testing.T) {
	doc := []byte(`top = "not-a-number"`)
	if _, err := Load(doc); err == nil {
		t.Error("expected an error for a non-integer top value")
	}
}
