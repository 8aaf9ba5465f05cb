package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Indico.Environment != "prod" {
		t.Errorf("Environment = %q, want %q", cfg.Indico.Environment, "prod")
	}
	if got := cfg.Endpoint(); got != "https://events.canonical.com" {
		t.Errorf("Endpoint() = %q", got)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.RequestTimeout())
	}
	if cfg.SwapDeadline() != time.Minute {
		t.Errorf("SwapDeadline() = %v, want 1m", cfg.SwapDeadline())
	}
	if !cfg.Swap.Journal {
		t.Error("Journal should default to true")
	}
	if cfg.UI.Theme != "mocha" {
		t.Errorf("Theme = %q, want %q", cfg.UI.Theme, "mocha")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefault_EnvironmentsAreCopied(t *testing.T) {
	cfg := Default()
	cfg.Indico.Environments["prod"] = "http://elsewhere"

	if DefaultEnvironments["prod"] != "https://events.canonical.com" {
		t.Error("Default() shares the package environment map")
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Indico.Environment != "prod" {
		t.Errorf("expected defaults, got %+v", cfg.Indico)
	}
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[indico]
environment = "lab"
token = "indp_secret"
request_timeout = "5s"

[indico.environments]
lab = "https://indico.lab.example.org"

[swap]
deadline = "20s"
journal = false

[storage]
db_path = "~/journal.db"

[ui]
theme = "latte"
color = "never"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if got := cfg.Endpoint(); got != "https://indico.lab.example.org" {
		t.Errorf("Endpoint() = %q", got)
	}
	if _, ok := cfg.Indico.Environments["stage"]; !ok {
		t.Error("default environments should survive a file that adds one")
	}
	if cfg.Indico.Token != "indp_secret" {
		t.Errorf("Token = %q", cfg.Indico.Token)
	}
	if cfg.RequestTimeout() != 5*time.Second || cfg.SwapDeadline() != 20*time.Second {
		t.Errorf("durations = %v, %v", cfg.RequestTimeout(), cfg.SwapDeadline())
	}
	if cfg.Swap.Journal {
		t.Error("Journal should be false")
	}
	if strings.HasPrefix(cfg.Storage.DBPath, "~") {
		t.Errorf("DBPath not expanded: %q", cfg.Storage.DBPath)
	}
	if cfg.UI.Theme != "latte" || cfg.UI.Color != "never" {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[indico\nenvironment ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("INDICO_ENV", "stage")
	t.Setenv("INDICO_TOKEN", "from-env")
	t.Setenv("INDICO_REQUEST_TIMEOUT", "2s")
	t.Setenv("INDICO_SWAP_DEADLINE", "10s")
	t.Setenv("INDICO_DB_PATH", "/tmp/indico-test.db")
	t.Setenv("INDICO_UI_THEME", "frappe")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if got := cfg.Endpoint(); got != "https://events.staging.canonical.com" {
		t.Errorf("Endpoint() = %q", got)
	}
	if cfg.Indico.Token != "from-env" {
		t.Errorf("Token = %q", cfg.Indico.Token)
	}
	if cfg.RequestTimeout() != 2*time.Second || cfg.SwapDeadline() != 10*time.Second {
		t.Errorf("durations = %v, %v", cfg.RequestTimeout(), cfg.SwapDeadline())
	}
	if cfg.Storage.DBPath != "/tmp/indico-test.db" {
		t.Errorf("DBPath = %q", cfg.Storage.DBPath)
	}
	if cfg.UI.Theme != "frappe" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
}

func TestLoadFrom_BaseURLOverridesEnvironment(t *testing.T) {
	t.Setenv("INDICO_BASE_URL", "http://127.0.0.1:9000")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got := cfg.Endpoint(); got != "http://127.0.0.1:9000" {
		t.Errorf("Endpoint() = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown environment", func(c *Config) { c.Indico.Environment = "qa" }, "unknown environment"},
		{"unknown environment with base url", func(c *Config) {
			c.Indico.Environment = "qa"
			c.Indico.BaseURL = "https://indico.example.org"
		}, ""},
		{"bad base url", func(c *Config) { c.Indico.BaseURL = "ftp://indico" }, "base_url"},
		{"bad environment url", func(c *Config) { c.Indico.Environments["lab"] = "not a url" }, "environments.lab"},
		{"bad timeout", func(c *Config) { c.Indico.RequestTimeout = "soon" }, "request_timeout"},
		{"zero deadline", func(c *Config) { c.Swap.Deadline = "0s" }, "deadline"},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, "db_path"},
		{"bad color", func(c *Config) { c.UI.Color = "sometimes" }, "color"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestUseEnvironment(t *testing.T) {
	cfg := Default()
	cfg.Indico.BaseURL = "http://override"

	if err := cfg.UseEnvironment("local"); err != nil {
		t.Fatalf("UseEnvironment failed: %v", err)
	}
	if got := cfg.Endpoint(); got != "http://localhost:8000" {
		t.Errorf("Endpoint() = %q", got)
	}
	if err := cfg.UseEnvironment("qa"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestEnvironmentNames(t *testing.T) {
	got := strings.Join(Default().EnvironmentNames(), ",")
	if got != "local,prod,stage" {
		t.Errorf("EnvironmentNames() = %q", got)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Indico.Token = "indp_saved"
	cfg.Indico.Environments["lab"] = "https://indico.lab.example.org"
	cfg.UI.Theme = "macchiato"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Indico.Token != "indp_saved" || loaded.UI.Theme != "macchiato" {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if loaded.Indico.Environments["lab"] != "https://indico.lab.example.org" {
		t.Errorf("environments = %v", loaded.Indico.Environments)
	}
}
