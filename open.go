package bitlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bretuobay/bitlog/internal/keydir"
	"github.com/bretuobay/bitlog/internal/logfile"
)

// Open opens (creating if necessary) a database at opts.Path, replays the
// segment files to rebuild the key directory, and takes an exclusive lock on
// the directory. A truncated tail in the newest segment is trimmed; torn
// data anywhere else is reported as ErrCorruptLog.
func Open(opts Options) (*DB, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("bitlog: path required")
	}
	opts = withDefaults(opts)

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, err
	}

	lockFile, err := os.OpenFile(filepath.Join(opts.Path, "LOCK"), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = lockFile.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, err
	}

	if err := logfile.RemoveStrayTemps(opts.Path); err != nil {
		_ = lockFile.Close()
		return nil, err
	}

	dir := keydir.New()
	stale, err := replaySegments(opts.Path, dir)
	if err != nil {
		_ = lockFile.Close()
		return nil, err
	}

	log, err := logfile.Open(opts.Path, opts.MaxSegmentSize)
	if err != nil {
		_ = lockFile.Close()
		return nil, err
	}

	readers, err := newReaderCache(opts.Path, opts.ReaderCacheSize)
	if err != nil {
		_ = log.Close()
		_ = lockFile.Close()
		return nil, err
	}

	db := &DB{
		path:     opts.Path,
		opts:     opts,
		log:      log,
		readers:  readers,
		lockFile: lockFile,
		stopCh:   make(chan struct{}),
		stats:    &statsTracker{},
	}
	db.keydir.Store(dir)
	db.staleBytes.Store(stale)

	if opts.SyncMode == SyncPeriodic {
		db.startSyncWorker(time.Second)
	}

	logrus.WithFields(logrus.Fields{
		"path":        opts.Path,
		"keys":        dir.Len(),
		"stale_bytes": stale,
	}).Debug("database opened")
	return db, nil
}

// replaySegments rebuilds the key directory from the segment files in
// ascending id order and returns the stale byte count left behind by
// overwrites and removes.
func replaySegments(path string, dir *keydir.Dir) (int64, error) {
	segments, err := logfile.ListSegments(path)
	if err != nil {
		return 0, err
	}

	var stale int64
	for i, seg := range segments {
		records, validLen, clean, scanErr := logfile.ScanSegment(seg.Path)
		if scanErr != nil {
			return 0, scanErr
		}
		if !clean {
			if i != len(segments)-1 {
				return 0, fmt.Errorf("%w: torn record in sealed segment %s", ErrCorruptLog, filepath.Base(seg.Path))
			}
			logrus.WithFields(logrus.Fields{
				"segment":   filepath.Base(seg.Path),
				"valid_len": validLen,
			}).Warn("truncating torn tail of newest segment")
			if err := os.Truncate(seg.Path, validLen); err != nil {
				return 0, err
			}
		}

		for _, located := range records {
			meta := keydir.Meta{Segment: seg.Seq, Offset: located.Offset, Length: located.Length}
			switch located.Record.Type {
			case logfile.RecordSet:
				if prev, existed := dir.Put(string(located.Record.Key), meta); existed {
					stale += prev.Length
				}
			case logfile.RecordRemove:
				if prev, existed := dir.Delete(string(located.Record.Key)); existed {
					stale += prev.Length
				}
				// the remove record itself is dead weight once applied
				stale += meta.Length
			}
		}
	}
	return stale, nil
}
