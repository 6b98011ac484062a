package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := ConfigPath(), "/custom/config/bibdup/config.yml"; got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := ConfigPath(), filepath.Join(home, ".config", "bibdup", "config.yml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestDefaultDBPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	if got, want := DefaultDBPath(), "/custom/cache/bibdup/records.db"; got != want {
		t.Errorf("DefaultDBPath() = %q, want %q", got, want)
	}
}

func TestLoad_NotFound(t *testing.T) {
	ResetCache()
	defer ResetCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil")
	}
	if cfg.DBPath != "" || cfg.Human || cfg.FailOnDuplicates {
		t.Errorf("Load() = %+v, want empty config", cfg)
	}
}

func TestLoad_Valid(t *testing.T) {
	ResetCache()
	defer ResetCache()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "db_path: ~/bib/records.db\nhuman: true\nfail_on_duplicates: true\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "bib/records.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if !cfg.Human {
		t.Error("Human = false, want true")
	}
	if !cfg.FailOnDuplicates {
		t.Error("FailOnDuplicates = false, want true")
	}
}

func TestLoad_Cached(t *testing.T) {
	ResetCache()
	defer ResetCache()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "human: true\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	first, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	writeConfig(t, tmpDir, "human: false\n")
	second, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first != second || !second.Human {
		t.Error("Load() should return the cached config until ResetCache")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	ResetCache()
	defer ResetCache()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "human: [unclosed\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := Load(); err == nil {
		t.Error("Load() should return error for invalid YAML")
	}
}

func TestResolveDBPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/cache")

	tests := []struct {
		name   string
		env    string
		dbPath string
		want   string
	}{
		{"default", "", "", "/cache/bibdup/records.db"},
		{"config value", "", "/from/config.db", "/from/config.db"},
		{"env wins", "/from/env.db", "/from/config.db", "/from/env.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDBPath, tt.env)
			cfg := &Config{DBPath: tt.dbPath}
			if got := cfg.ResolveDBPath(); got != tt.want {
				t.Errorf("ResolveDBPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~/refs.db", filepath.Join(home, "refs.db")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func writeConfig(t *testing.T, xdgHome, content string) {
	t.Helper()
	dir := filepath.Join(xdgHome, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
