package bitlog

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/bretuobay/bitlog/internal/keydir"
	"github.com/bretuobay/bitlog/internal/logfile"
)

// maybeCompact triggers a compaction when the stale byte count crosses the
// configured watermark. It is a no-op while another compaction is running.
func (db *DB) maybeCompact() {
	if db.opts.CompactionWatermark <= 0 {
		return
	}
	if db.staleBytes.Load() < db.opts.CompactionWatermark {
		return
	}
	if err := db.Compact(); err != nil && err != ErrClosed {
		logrus.WithError(err).Error("compaction failed")
	}
}

// Compact rewrites every live record from the sealed segments into a fresh
// target segment, swaps in a rebuilt key directory, and deletes the retired
// segments. Writers are excluded only for the brief bookkeeping at the start
// and for the swap itself; the bulk copy runs concurrently with them, and
// readers are never blocked at all.
func (db *DB) Compact() error {
	if db.closed.Load() {
		return ErrClosed
	}

	db.compactMu.Lock()
	if db.compacting {
		db.compactMu.Unlock()
		return nil
	}
	db.compacting = true
	db.compactMu.Unlock()

	err := db.compact()

	db.compactMu.Lock()
	db.compacting = false
	db.compactMu.Unlock()
	return err
}

func (db *DB) compact() error {
	timer := prometheus.NewTimer(operationDurationSeconds.WithLabelValues(compactOperation))
	defer timer.ObserveDuration()

	// Seal the active segment and snapshot the directory under the write
	// lock. From here on, new writes land in segments at or above the new
	// active id and their keys are journaled for reconciliation.
	db.writeMu.Lock()
	sealBelow, target, err := db.log.StartCompaction()
	if err != nil {
		db.writeMu.Unlock()
		return err
	}
	snapshot := db.keydir.Load().Snapshot()
	db.journal = make(map[string]struct{})
	db.writeMu.Unlock()

	fail := func(err error) error {
		_ = target.Abort()
		db.writeMu.Lock()
		db.journal = nil
		db.writeMu.Unlock()
		return err
	}

	// Copy the live records out of the sealed segments. Values are
	// decompressed on read and re-encoded with the current codec.
	relocated := make(map[string]keydir.Meta)
	for key, meta := range snapshot {
		if meta.Segment >= sealBelow {
			continue
		}
		rec, err := db.readRecord(meta)
		if err != nil {
			return fail(err)
		}
		rec.Type = logfile.RecordSet
		rec.Codec = db.opts.Compression
		newMeta, err := target.Append(rec)
		if err != nil {
			return fail(err)
		}
		relocated[key] = newMeta
	}
	if err := target.Finalize(); err != nil {
		return fail(err)
	}

	rebuilt := keydir.NewWithCapacity(len(snapshot))
	for key, meta := range snapshot {
		if moved, ok := relocated[key]; ok {
			meta = moved
		}
		rebuilt.Put(key, meta)
	}

	// Swap. Keys written during the walk take their current state from the
	// live directory, overriding whatever the snapshot copied.
	db.writeMu.Lock()
	live := db.keydir.Load()
	for key := range db.journal {
		if cur, ok := live.Get(key); ok {
			rebuilt.Put(key, cur)
		} else {
			rebuilt.Delete(key)
		}
	}
	db.journal = nil
	db.keydir.Store(rebuilt)
	db.staleBytes.Store(0)
	db.writeMu.Unlock()

	// Old segments are unreachable through the new directory; delete them
	// and drop any cached read handles.
	segments, err := logfile.ListSegments(db.path)
	if err != nil {
		return err
	}
	var reclaimed int64
	removed := 0
	for _, seg := range segments {
		if seg.Seq >= sealBelow {
			continue
		}
		if info, statErr := os.Stat(seg.Path); statErr == nil {
			reclaimed += info.Size()
		}
		if err := os.Remove(seg.Path); err != nil {
			return err
		}
		removed++
	}
	db.readers.purge()

	compactionsTotal.Inc()
	compactionReclaimedBytes.Add(float64(reclaimed))
	staleBytesGauge.Set(0)
	liveKeysGauge.Set(float64(rebuilt.Len()))

	logrus.WithFields(logrus.Fields{
		"target_segment":   sealBelow,
		"segments_removed": removed,
		"live_records":     len(relocated),
		"reclaimed_bytes":  reclaimed - target.Size(),
	}).Info("compaction finished")
	return nil
}
