// Package bitlog is an embeddable, network-servable key-value store backed
// by an append-only command log. Keys map to the disk location of their
// latest command through an in-memory key directory; background compaction
// rewrites live data into a fresh segment and retires the old ones without
// blocking readers.
package bitlog

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/bretuobay/bitlog/internal/keydir"
	"github.com/bretuobay/bitlog/internal/logfile"
)

// DB is the main database handle. It is safe for concurrent use: reads go
// through an atomically swapped key directory and never block, writes are
// serialized on writeMu.
type DB struct {
	path     string
	opts     Options
	log      *logfile.Manager
	readers  *readerCache
	lockFile *os.File

	// keydir holds the current index. Writers mutate the live Dir under
	// writeMu; compaction installs a replacement Dir with a single Store,
	// which is the only moment the swap becomes visible to readers.
	keydir atomic.Pointer[keydir.Dir]

	writeMu    sync.Mutex
	staleBytes atomic.Int64
	// journal records keys written while a compaction walk is in flight,
	// so the walk's snapshot can be reconciled before the index swap.
	// Non-nil only during a compaction; guarded by writeMu.
	journal map[string]struct{}

	compactMu  sync.Mutex
	compacting bool

	closed     atomic.Bool
	syncTicker *time.Ticker
	stopCh     chan struct{}
	wg         sync.WaitGroup

	stats *statsTracker
}

// readRecord fetches and decodes the command a keydir entry points at.
func (db *DB) readRecord(meta keydir.Meta) (logfile.Record, error) {
	file, err := db.readers.get(meta.Segment)
	if err != nil {
		return logfile.Record{}, err
	}
	return logfile.ReadRecordAt(file, meta.Offset, meta.Length)
}

// readerCache keeps a bounded set of open read-only segment handles.
// Eviction closes the handle; a reader caught mid-pread by an eviction or a
// post-compaction purge sees os.ErrClosed and retries through the fresh
// key directory.
type readerCache struct {
	dir   string
	mu    sync.Mutex
	cache *lru.Cache
}

func newReaderCache(dir string, size int) (*readerCache, error) {
	cache, err := lru.NewWithEvict(size, func(_, value interface{}) {
		_ = value.(*os.File).Close()
	})
	if err != nil {
		return nil, err
	}
	return &readerCache{dir: dir, cache: cache}, nil
}

func (c *readerCache) get(seq uint64) (*os.File, error) {
	if cached, ok := c.cache.Get(seq); ok {
		return cached.(*os.File), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.cache.Get(seq); ok {
		return cached.(*os.File), nil
	}
	file, err := os.Open(logfile.SegmentPath(c.dir, seq))
	if err != nil {
		return nil, err
	}
	c.cache.Add(seq, file)
	return file, nil
}

func (c *readerCache) purge() {
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}
