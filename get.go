package bitlog

import (
	"errors"
	"io/fs"
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

// Get returns the value stored under key, or ErrKeyNotFound. Reads never
// block on writers or compaction: the key directory is consulted through an
// atomic pointer and the record is fetched with a positional read.
func (db *DB) Get(key string) (string, error) {
	if db.closed.Load() {
		return "", ErrClosed
	}
	if len(key) == 0 || len(key) > db.opts.MaxKeySize {
		return "", ErrKeyTooLarge
	}

	timer := prometheus.NewTimer(operationDurationSeconds.WithLabelValues(getOperation))
	defer timer.ObserveDuration()
	db.stats.reads.Add(1)

	// Compaction may delete the segment a reader is about to touch. The
	// swap installs the fresh directory before any old segment is removed,
	// so one retry through the current pointer always lands on live data.
	for attempt := 0; ; attempt++ {
		meta, ok := db.keydir.Load().Get(key)
		if !ok {
			return "", ErrKeyNotFound
		}
		rec, err := db.readRecord(meta)
		if err != nil {
			if attempt == 0 && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrClosed)) {
				continue
			}
			return "", err
		}
		return string(rec.Value), nil
	}
}

// Exists reports whether key has a live entry, without touching disk.
func (db *DB) Exists(key string) (bool, error) {
	if db.closed.Load() {
		return false, ErrClosed
	}
	if len(key) == 0 || len(key) > db.opts.MaxKeySize {
		return false, ErrKeyTooLarge
	}
	return db.keydir.Load().Contains(key), nil
}
