package config

import (
	"os"
	"path/filepath"
	"testing"

	"drs/internal/storage"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DRS_CONFIG", "")
	t.Setenv("DRS_LISTEN_ADDR", "")
	t.Setenv("DRS_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.Backend != storage.KindLocal {
		t.Fatalf("expected local backend default, got %q", cfg.Backend)
	}
	if cfg.DataDir == "" || cfg.DBPath == "" || cfg.TempDir == "" {
		t.Fatalf("derived defaults missing: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drs.toml")
	content := `
listen_addr = "127.0.0.1:9999"
backend = "s3"
db_path = "/tmp/test-drs.db"

[s3]
endpoint = "minio.internal:9000"
bucket = "objects"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DRS_CONFIG", path)
	t.Setenv("DRS_LISTEN_ADDR", "0.0.0.0:8080")
	t.Setenv("DRS_S3_ACCESS_KEY", "ak")
	t.Setenv("DRS_S3_SECRET_KEY", "sk")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:8080" {
		t.Fatalf("env override lost: %q", cfg.ListenAddr)
	}
	if cfg.Backend != storage.KindS3 || cfg.S3.Bucket != "objects" {
		t.Fatalf("file values lost: %+v", cfg)
	}

	sc := cfg.StorageConfig()
	if sc.S3.AccessKey != "ak" || sc.S3.SecretKey != "sk" {
		t.Fatalf("credentials not mapped: %+v", sc.S3)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "tape"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Backend = storage.KindS3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing s3 bucket")
	}

	cfg = Default()
	cfg.DataDir = "/srv/data"
	cfg.Authz.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled authz without url")
	}
}
