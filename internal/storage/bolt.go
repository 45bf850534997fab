package storage

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var vaultBucket = []byte("vaults")

// BoltBackend stores each namespace as one key in a bbolt bucket
type BoltBackend struct {
	db *bbolt.DB
}

// NewBolt opens (or creates) the bbolt file at path
func NewBolt(path string) (*BoltBackend, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(vaultBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Get(ctx context.Context, namespace string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(vaultBucket).Get([]byte(namespace))
		if v == nil {
			return ErrNotFound
		}
		// bbolt values are only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BoltBackend) Put(ctx context.Context, namespace string, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(vaultBucket).Put([]byte(namespace), data)
	})
}

func (b *BoltBackend) Delete(ctx context.Context, namespace string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(vaultBucket).Delete([]byte(namespace))
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
