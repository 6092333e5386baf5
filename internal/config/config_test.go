package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{"CONFIG_FILE", "APP_ENV", "HTTP_PORT", "PORT", "QUALTRICS_BASE_URL", "QUALTRICS_API_TOKEN", "VENDOR_TIMEOUT", "ALLOWED_ORIGINS", "JOB_STORE", "JOB_RETENTION", "DB_DRIVER", "DB_PATH", "DATABASE_URL", "DB_DSN", "REDIS_URL"}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T){
	clearEnv(t)
	cfg, err := Load()
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Env != "dev" { t.Fatalf("expected dev, got %s", cfg.Env) }
	if cfg.HttpPort != "5000" { t.Fatalf("expected 5000, got %s", cfg.HttpPort) }
	if cfg.VendorBaseURL != "https://co1.qualtrics.com" { t.Fatalf("unexpected base url %s", cfg.VendorBaseURL) }
	if cfg.VendorToken != "" { t.Fatalf("token must not have a default") }
	if cfg.VendorTimeout != 30*time.Second { t.Fatalf("unexpected timeout %s", cfg.VendorTimeout) }
	if cfg.JobStore != "db" || cfg.DBDriver != "sqlite" || cfg.DBPath == "" { t.Fatalf("unexpected store defaults: %+v", cfg) }
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" { t.Fatalf("unexpected origins %v", cfg.AllowedOrigins) }
}

func TestLoadEnvOverride(t *testing.T){
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("QUALTRICS_BASE_URL", "https://eu.qualtrics.com/")
	t.Setenv("QUALTRICS_API_TOKEN", "tok")
	t.Setenv("VENDOR_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("JOB_STORE", "redis")
	cfg, err := Load()
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Env != "prod" || cfg.HttpPort != "9999" { t.Fatalf("env override failed: %+v", cfg) }
	if cfg.VendorBaseURL != "https://eu.qualtrics.com" { t.Fatalf("trailing slash not trimmed: %s", cfg.VendorBaseURL) }
	if cfg.VendorToken != "tok" || cfg.VendorTimeout != 5*time.Second { t.Fatalf("vendor override failed: %+v", cfg) }
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" { t.Fatalf("origins: %v", cfg.AllowedOrigins) }
	if cfg.JobStore != "redis" { t.Fatalf("job store override failed") }
}

func TestLoadFileThenEnv(t *testing.T){
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "surveyboard.yaml")
	body := "env: staging\nqualtrics:\n  token: from-file\n  timeout: 12s\njobs:\n  retention: 1h\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil { t.Fatal(err) }
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_ENV", "prod")
	cfg, err := Load()
	if err != nil { t.Fatalf("load: %v", err) }
	if cfg.Env != "prod" { t.Fatalf("env must win over file, got %s", cfg.Env) }
	if cfg.VendorToken != "from-file" || cfg.VendorTimeout != 12*time.Second || cfg.JobRetention != time.Hour { t.Fatalf("file values not applied: %+v", cfg) }
}

func TestLoadRejectsBadValues(t *testing.T){
	clearEnv(t)
	t.Setenv("VENDOR_TIMEOUT", "soon")
	if _, err := Load(); err == nil { t.Fatal("expected error for bad duration") }
	t.Setenv("VENDOR_TIMEOUT", "")
	t.Setenv("JOB_STORE", "mongo")
	if _, err := Load(); err == nil { t.Fatal("expected error for unknown job store") }
}
