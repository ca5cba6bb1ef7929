package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PresetBucket != "presets" || cfg.PreviewBucket != "previews" {
		t.Fatalf("buckets = %s/%s", cfg.PresetBucket, cfg.PreviewBucket)
	}
	if cfg.Workers != 4 || cfg.Blob.Driver != "fs" || cfg.Catalog.Driver != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presetcore.yaml")
	doc := `preset_root: /srv/presets
preview_root: /srv/previews
workers: 8
blob:
  driver: s3
  s3:
    region: eu-west-1
    endpoint: http://minio:9000
    path_style: true
catalog:
  driver: postgres
  postgres_dsn: postgres://db/presets
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PresetRoot != "/srv/presets" || cfg.Workers != 8 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Blob.Driver != "s3" || !cfg.Blob.S3.PathStyle || cfg.Blob.S3.Endpoint != "http://minio:9000" {
		t.Fatalf("blob = %+v", cfg.Blob)
	}
	if cfg.Catalog.Driver != "postgres" || cfg.Catalog.PostgresDSN != "postgres://db/presets" {
		t.Fatalf("catalog = %+v", cfg.Catalog)
	}
	// File sections it omits keep their defaults.
	if cfg.PresetBucket != "presets" || cfg.Catalog.SQLitePath != "presetcore.db" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presetcore.yaml")
	if err := os.WriteFile(path, []byte("workers: 8\npreset_root: /from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PRESETCORE_WORKERS", "2")
	t.Setenv("PRESETCORE_PRESET_ROOT", "/from-env")
	t.Setenv("PRESETCORE_CATALOG_DRIVER", "memory")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 2 || cfg.PresetRoot != "/from-env" || cfg.Catalog.Driver != "memory" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadEnvValues(t *testing.T) {
	t.Setenv("PRESETCORE_WORKERS", "many")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-numeric workers")
	}
	t.Setenv("PRESETCORE_WORKERS", "4")
	t.Setenv("PRESETCORE_BLOB_S3_PATH_STYLE", "definitely")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-boolean path style")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error without roots")
	}
	cfg.PresetRoot = "/srv/presets"
	cfg.PreviewRoot = "/srv/previews"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cfg.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestConfigTranslation(t *testing.T) {
	cfg := Default()
	cfg.Blob.Driver = "s3"
	cfg.Blob.S3.Region = "us-east-2"
	bc := cfg.BlobConfig()
	if string(bc.Driver) != "s3" || bc.S3.Region != "us-east-2" {
		t.Fatalf("blob config = %+v", bc)
	}
	cc := cfg.CatalogConfig()
	if string(cc.Driver) != "sqlite" || cc.SQLitePath != "presetcore.db" {
		t.Fatalf("catalog config = %+v", cc)
	}
}
