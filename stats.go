package bitlog

import (
	"os"
	"sync/atomic"

	"github.com/bretuobay/bitlog/internal/logfile"
)

// Stats is a point-in-time snapshot of database state.
type Stats struct {
	KeyCount     int
	SegmentCount int
	DiskBytes    int64
	StaleBytes   int64

	Reads   uint64
	Writes  uint64
	Removes uint64
}

type statsTracker struct {
	reads   atomic.Uint64
	writes  atomic.Uint64
	removes atomic.Uint64
}

// Stats reports current counters and on-disk totals. Disk figures are read
// from the directory and may lag in-flight writes by a moment.
func (db *DB) Stats() (Stats, error) {
	if db.closed.Load() {
		return Stats{}, ErrClosed
	}

	segments, err := logfile.ListSegments(db.path)
	if err != nil {
		return Stats{}, err
	}
	var diskBytes int64
	for _, seg := range segments {
		if info, statErr := os.Stat(seg.Path); statErr == nil {
			diskBytes += info.Size()
		}
	}

	return Stats{
		KeyCount:     db.keydir.Load().Len(),
		SegmentCount: len(segments),
		DiskBytes:    diskBytes,
		StaleBytes:   db.staleBytes.Load(),
		Reads:        db.stats.reads.Load(),
		Writes:       db.stats.writes.Load(),
		Removes:      db.stats.removes.Load(),
	}, nil
}
