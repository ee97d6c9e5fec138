package bitlog

import (
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("bitlog")

// BoltEngine is an alternative Engine backed by a bbolt B+tree file. It
// exists to exercise the Engine seam; the log engine and this one are
// interchangeable behind the same server.
type BoltEngine struct {
	db *bolt.DB
}

// OpenBolt opens (creating if necessary) a Bolt-backed store in dir.
func OpenBolt(dir string) (*BoltEngine, error) {
	db, err := bolt.Open(filepath.Join(dir, "bolt.db"), 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltEngine{db: db}, nil
}

// Get returns the value for key, or ErrKeyNotFound.
func (e *BoltEngine) Get(key string) (string, error) {
	var value string
	found := false
	err := e.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(boltBucket).Get([]byte(key)); raw != nil {
			value = string(raw)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key.
func (e *BoltEngine) Set(key, value string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
}

// Remove deletes key, or returns ErrKeyNotFound if it does not exist.
func (e *BoltEngine) Remove(key string) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		if bucket.Get([]byte(key)) == nil {
			return ErrKeyNotFound
		}
		return bucket.Delete([]byte(key))
	})
}

// Close closes the underlying Bolt file.
func (e *BoltEngine) Close() error {
	return e.db.Close()
}
