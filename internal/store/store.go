// Package store provides the small key-value stores chart state is kept in.
package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("key not found")

// KV is a string-keyed byte store. Put replaces any existing value.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Options selects and configures a driver.
type Options struct {
	Driver string
	Dir    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open opens the store for opts.Driver. File based drivers keep their data
// under opts.Dir, which is created if needed.
func Open(ctx context.Context, opts Options) (KV, error) {
	if opts.Driver == DriverRedis {
		return NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	switch opts.Driver {
	case DriverSQLite, "":
		return NewSQLite(filepath.Join(opts.Dir, "chartfm.db"))
	case DriverBolt:
		return NewBolt(filepath.Join(opts.Dir, "chartfm.bolt"))
	case DriverFile:
		return NewFile(filepath.Join(opts.Dir, "kv"))
	default:
		return nil, errors.Newf("unknown storage driver %q", opts.Driver)
	}
}
