package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DOCSHARE_LISTEN", "DOCSHARE_STORE_DRIVER", "DOCSHARE_DATABASE_URL", "DOCSHARE_DATA_DIR", "DOCSHARE_LOG_LEVEL", "DOCSHARE_MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:5000" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr())
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != filepath.Join("data", "app.db") {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.App.Uploads != filepath.Join("data", "uploads") || cfg.App.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
}

func TestLoadJSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"server":{"addr":"0.0.0.0","port":"8080"},"app":{"data":"/srv/docs","log_level":"debug"},"store":{"driver":"memory"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr())
	}
	if cfg.App.Uploads != filepath.Join("/srv/docs", "uploads") || cfg.App.LogLevel != "debug" {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
	if cfg.Store.Driver != DriverMemory || cfg.Store.DSN != "" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"server:",
		"  port: \":7000\"",
		"store:",
		"  driver: postgres",
		"  dsn: postgres://file/docs",
		"app:",
		"  max_upload_bytes: 1024",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PORT", "9000")
	t.Setenv("DOCSHARE_DATABASE_URL", "postgres://env/docs")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr() != "0.0.0.0:9000" {
		t.Fatalf("expected PORT to win, got %q", cfg.ListenAddr())
	}
	if cfg.Store.Driver != DriverPostgres || cfg.Store.DSN != "postgres://env/docs" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.App.MaxUploadBytes != 1024 {
		t.Fatalf("unexpected max upload %d", cfg.App.MaxUploadBytes)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCSHARE_STORE_DRIVER", "mongo")
	if _, err := Load(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	if err := LoadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DOCSHARE_LISTEN=127.0.0.1:6000\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	os.Unsetenv("DOCSHARE_LISTEN")
	if err := LoadEnv(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr() != "127.0.0.1:6000" {
		t.Fatalf("expected env file listen addr, got %q", cfg.ListenAddr())
	}
}
