package collection

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("COLLECTION_INTERVAL", "")
	t.Setenv("COLLECTION_SITE_TIMEOUT", "")
	t.Setenv("COLLECTION_SITES_FILE", "")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadConfigFromEnv() error = %v", err)
	}

	if cfg.Interval != time.Hour {
		t.Errorf("Interval = %v, want 1h", cfg.Interval)
	}
	if cfg.SiteTimeout != 10*time.Minute {
		t.Errorf("SiteTimeout = %v, want 10m", cfg.SiteTimeout)
	}
	if cfg.SitesFile != "sites.json" {
		t.Errorf("SitesFile = %q, want sites.json", cfg.SitesFile)
	}
}

func TestLoadConfigFromEnv_RejectsShortInterval(t *testing.T) {
	t.Setenv("COLLECTION_INTERVAL", "10s")

	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("LoadConfigFromEnv() expected error for interval below 1m")
	}
}

func TestLoadSites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	content := `[
		{"name":"site-a","buildToken":"token-a","urls":["https://a.example.com/"],"numberOfRuns":5},
		{"name":"site-b","buildToken":"token-b","urls":["https://b.example.com/"],"branch":"dev"}
	]`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write sites file: %v", err)
	}

	sites, err := LoadSites(path)
	if err != nil {
		t.Fatalf("LoadSites() error = %v", err)
	}

	if len(sites) != 2 {
		t.Fatalf("sites count = %d, want 2", len(sites))
	}
	if sites[0].NumberOfRuns != 5 {
		t.Errorf("NumberOfRuns = %d, want 5", sites[0].NumberOfRuns)
	}
	if sites[1].Branch != "dev" {
		t.Errorf("Branch = %q, want dev", sites[1].Branch)
	}
}

func TestLoadSites_MissingFile(t *testing.T) {
	if _, err := LoadSites(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("LoadSites() expected error for missing file")
	}
}

func TestLoadSites_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write sites file: %v", err)
	}

	if _, err := LoadSites(path); err == nil {
		t.Fatal("LoadSites() expected error for invalid JSON")
	}
}
