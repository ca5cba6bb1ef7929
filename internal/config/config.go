// Package config loads the presetcore configuration from an optional YAML
// file with environment overrides. Precedence: env > file > defaults; the
// CLIs apply their flags on top of the loaded Config.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"presetcore/internal/blob"
	s3blob "presetcore/internal/blob/s3"
	"presetcore/internal/catalog"
)

// EnvPrefix is the prefix shared by all presetcore environment variables.
const EnvPrefix = "PRESETCORE_"

// Blob selects a blob driver shared by both buckets.
type Blob struct {
	Driver string `yaml:"driver"`  // fs (default), s3, memory
	FSRoot string `yaml:"fs_root"` // driver=fs: buckets become subdirectories
	S3     S3     `yaml:"s3"`
}

// S3 parameterizes the s3 driver. The bucket name itself is supplied per
// logical bucket at open time.
type S3 struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // MinIO and friends
	PathStyle bool   `yaml:"path_style"`
}

// Catalog selects a catalog driver.
type Catalog struct {
	Driver      string `yaml:"driver"` // sqlite (default), postgres, memory
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Config is the full presetsync configuration.
type Config struct {
	PresetRoot    string  `yaml:"preset_root"`
	PreviewRoot   string  `yaml:"preview_root"`
	PresetBucket  string  `yaml:"preset_bucket"`
	PreviewBucket string  `yaml:"preview_bucket"`
	Workers       int     `yaml:"workers"`
	Blob          Blob    `yaml:"blob"`
	Catalog       Catalog `yaml:"catalog"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PresetBucket:  "presets",
		PreviewBucket: "previews",
		Workers:       4,
		Blob:          Blob{Driver: string(blob.DriverFilesystem), FSRoot: "./blobdata"},
		Catalog:       Catalog{Driver: string(catalog.DriverSQLite), SQLitePath: "presetcore.db"},
	}
}

// Load builds the configuration from defaults, the YAML file at path when
// path is non-empty, and PRESETCORE_ environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	setString("PRESET_ROOT", &c.PresetRoot)
	setString("PREVIEW_ROOT", &c.PreviewRoot)
	setString("PRESET_BUCKET", &c.PresetBucket)
	setString("PREVIEW_BUCKET", &c.PreviewBucket)
	setString("BLOB_DRIVER", &c.Blob.Driver)
	setString("BLOB_FS_ROOT", &c.Blob.FSRoot)
	setString("BLOB_S3_REGION", &c.Blob.S3.Region)
	setString("BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	setString("CATALOG_DRIVER", &c.Catalog.Driver)
	setString("CATALOG_SQLITE_PATH", &c.Catalog.SQLitePath)
	setString("CATALOG_POSTGRES_DSN", &c.Catalog.PostgresDSN)
	if v, ok := os.LookupEnv(EnvPrefix + "BLOB_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %sBLOB_S3_PATH_STYLE: %w", EnvPrefix, err)
		}
		c.Blob.S3.PathStyle = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sWORKERS: %w", EnvPrefix, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the fields the orchestrator cannot default.
func (c Config) Validate() error {
	if c.PresetRoot == "" {
		return fmt.Errorf("preset_root is required")
	}
	if c.PreviewRoot == "" {
		return fmt.Errorf("preview_root is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// BlobConfig translates the blob section into the driver factory's form.
func (c Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(c.Blob.Driver),
		FSRoot: c.Blob.FSRoot,
		S3: s3blob.Config{
			Region:    c.Blob.S3.Region,
			Endpoint:  c.Blob.S3.Endpoint,
			PathStyle: c.Blob.S3.PathStyle,
		},
	}
}

// CatalogConfig translates the catalog section into the driver factory's form.
func (c Config) CatalogConfig() catalog.Config {
	return catalog.Config{
		Driver:      catalog.Driver(c.Catalog.Driver),
		SQLitePath:  c.Catalog.SQLitePath,
		PostgresDSN: c.Catalog.PostgresDSN,
	}
}
