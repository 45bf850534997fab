package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DriverMemory = "memory"
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
	DriverS3     = "s3"
)

// Options selects and configures a backend
type Options struct {
	Driver  string
	DataDir string
	S3      S3Config
}

// Open returns the backend named by opts.Driver. File backends live under DataDir.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverBolt, "":
		if err := ensureDir(opts.DataDir); err != nil {
			return nil, err
		}
		return NewBolt(filepath.Join(opts.DataDir, "vault.db"))
	case DriverSQLite:
		return NewSQLite(ctx, filepath.Join(opts.DataDir, "vault.sqlite"))
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
