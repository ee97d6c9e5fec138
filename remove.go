package bitlog

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bretuobay/bitlog/internal/logfile"
)

// Remove deletes key by appending a remove command and dropping the key
// directory entry. Returns ErrKeyNotFound if the key has no live entry.
func (db *DB) Remove(key string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if len(key) == 0 || len(key) > db.opts.MaxKeySize {
		return ErrKeyTooLarge
	}

	timer := prometheus.NewTimer(operationDurationSeconds.WithLabelValues(removeOperation))
	defer timer.ObserveDuration()

	rec := logfile.Record{
		Type:  logfile.RecordRemove,
		Codec: CompressionNone,
		Key:   []byte(key),
	}

	db.writeMu.Lock()
	dir := db.keydir.Load()
	if !dir.Contains(key) {
		db.writeMu.Unlock()
		return ErrKeyNotFound
	}
	meta, err := db.log.Append(rec)
	if err != nil {
		db.writeMu.Unlock()
		return err
	}
	if db.opts.SyncMode == SyncAlways {
		if err := db.log.Sync(); err != nil {
			db.writeMu.Unlock()
			return err
		}
	}
	if prev, existed := dir.Delete(key); existed {
		db.staleBytes.Add(prev.Length)
	}
	// the remove command is stale the moment it applies
	db.staleBytes.Add(meta.Length)
	if db.journal != nil {
		db.journal[key] = struct{}{}
	}
	db.writeMu.Unlock()

	db.stats.removes.Add(1)
	staleBytesGauge.Set(float64(db.staleBytes.Load()))
	liveKeysGauge.Set(float64(dir.Len()))

	db.maybeCompact()
	return nil
}
