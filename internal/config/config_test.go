package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if cfg.ExpressFee != 25000 || cfg.RegularFee != 0 {
		t.Fatalf("unexpected fees %d/%d", cfg.RegularFee, cfg.ExpressFee)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SHIPPING_EXPRESS_FEE", "30000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.ShutdownTimeout != 3*time.Second || cfg.ExpressFee != 30000 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoad_DotEnvBelowProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:7070\nPASSWORD_MIN=10\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("HTTP_ADDR", ":6060")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":6060" {
		t.Fatalf("process env should win, got %q", cfg.HTTPAddr)
	}
	if cfg.PasswordMin != 10 {
		t.Fatalf(".env value not applied, got %d", cfg.PasswordMin)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("http_addr: \":5050\"\nshipping_express_fee: 40000\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":5050" || cfg.ExpressFee != 40000 {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		HTTPAddr:        ":8080",
		DBConnString:    "postgres://u:p@h/db",
		ShutdownTimeout: time.Second,
		SessionTTL:      time.Hour,
		GuestTTL:        time.Hour,
		PasswordMin:     8,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	bad := base
	bad.DBConnString = "mysql://x"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected dsn error")
	}

	bad = base
	bad.ExpressFee = -1
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected fee error")
	}

	bad = base
	bad.NATSURL = "nats://localhost:4222"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected nats timeout error")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSAllowedOrigins: " http://a.test ,,http://b.test"}
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", got)
	}
}

func TestStringMasksDSN(t *testing.T) {
	cfg := Config{DBConnString: "postgres://user:secret@db:5432/x"}
	if s := cfg.String(); strings.Contains(s, "secret") {
		t.Fatalf("dsn not masked: %s", s)
	}
}
