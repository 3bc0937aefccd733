package store

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketKV = []byte("kv")

// Bolt is a KV backed by a single bbolt bucket.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens or creates the bbolt file at path.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open bolt db")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create bucket")
	}

	return &Bolt{db: db}, nil
}

// Get returns a copy of the value for key.
func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketKV).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %q", key)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// Put stores value under key.
func (b *Bolt) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), value)
	})
	return errors.Wrapf(err, "failed to put %q", key)
}

// Delete removes key.
func (b *Bolt) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Delete([]byte(key))
	})
	return errors.Wrapf(err, "failed to delete %q", key)
}

// Close releases the file lock.
func (b *Bolt) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
