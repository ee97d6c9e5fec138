package bitlog

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bretuobay/bitlog/internal/logfile"
)

// Set stores value under key. The command is appended to the active segment
// and the key directory entry is updated before returning; with SyncAlways
// (the default) the data is fsynced first.
func (db *DB) Set(key, value string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	if len(key) == 0 || len(key) > db.opts.MaxKeySize {
		return ErrKeyTooLarge
	}
	if len(value) > db.opts.MaxValueSize {
		return ErrValueTooLarge
	}

	timer := prometheus.NewTimer(operationDurationSeconds.WithLabelValues(setOperation))
	defer timer.ObserveDuration()

	rec := logfile.Record{
		Type:  logfile.RecordSet,
		Codec: db.opts.Compression,
		Key:   []byte(key),
		Value: []byte(value),
	}

	db.writeMu.Lock()
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
	dir := db.keydir.Load()
	if prev, existed := dir.Put(key, meta); existed {
		db.staleBytes.Add(prev.Length)
	}
	if db.journal != nil {
		db.journal[key] = struct{}{}
	}
	db.writeMu.Unlock()

	db.stats.writes.Add(1)
	staleBytesGauge.Set(float64(db.staleBytes.Load()))
	liveKeysGauge.Set(float64(dir.Len()))

	db.maybeCompact()
	return nil
}
