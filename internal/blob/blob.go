// Package blob re-exports the core blob abstractions and selects a driver
// from configuration.
package blob

import (
	"context"
	"fmt"
	"path/filepath"

	"presetcore/internal/blob/core"
	"presetcore/internal/blob/fs"
	"presetcore/internal/blob/memory"
	"presetcore/internal/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

// Config selects and parameterizes a blob driver for one logical bucket.
type Config struct {
	Driver Driver
	FSRoot string // base directory when driver=fs; bucket becomes a subdirectory
	S3     s3.Config
}

// Open constructs the blob store for the named bucket.
//
//	fs:     objects live under <FSRoot>/<bucket>
//	s3:     bucket maps to the configured (or same-named) S3 bucket
//	memory: fresh in-memory store, for tests
func Open(ctx context.Context, cfg Config, bucket string) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		root := cfg.FSRoot
		if root == "" {
			root = "./blobdata"
		}
		return fs.New(filepath.Join(root, bucket))
	case DriverS3:
		s3cfg := cfg.S3
		if s3cfg.Bucket == "" {
			s3cfg.Bucket = bucket
		}
		return s3.New(ctx, s3cfg)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// NewMemory returns an in-memory store for tests.
func NewMemory() Store { return memory.New() }
