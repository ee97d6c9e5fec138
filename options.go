package bitlog

import "github.com/bretuobay/bitlog/internal/compression"

// SyncMode controls when appended log data is fsynced.
type SyncMode uint8

const (
	// SyncAlways fsyncs on every write. This is the default: the engine
	// contract is durable-on-return for Set and Remove.
	SyncAlways SyncMode = iota
	// SyncPeriodic fsyncs on a one-second background ticker.
	SyncPeriodic
	// SyncManual fsyncs only on explicit Sync calls.
	SyncManual
)

// Compression selects the codec applied to record values on disk.
type Compression = compression.Type

const (
	CompressionNone   = compression.None
	CompressionSnappy = compression.Snappy
	CompressionLZ4    = compression.LZ4
	CompressionZstd   = compression.Zstd
)

// Options configures database behavior.
type Options struct {
	Path     string
	SyncMode SyncMode

	MaxKeySize   int
	MaxValueSize int

	// MaxSegmentSize is the rotation threshold for the active segment.
	MaxSegmentSize int64

	// CompactionWatermark is the stale-byte count above which a write
	// triggers compaction.
	CompactionWatermark int64

	// Compression is the codec for newly written values. Reads honor the
	// codec stored in each record, so changing it later is safe.
	Compression Compression

	// ReaderCacheSize bounds the number of open segment file handles kept
	// for reads.
	ReaderCacheSize int
}

const (
	DefaultMaxSegmentSize      = 16 * 1024 * 1024
	DefaultCompactionWatermark = 2 * 1024 * 1024
	DefaultReaderCacheSize     = 32
)

// DefaultOptions returns a baseline configuration for a database at path.
func DefaultOptions(path string) Options {
	return Options{
		Path:                path,
		SyncMode:            SyncAlways,
		MaxKeySize:          MaxKeySize,
		MaxValueSize:        MaxValueSize,
		MaxSegmentSize:      DefaultMaxSegmentSize,
		CompactionWatermark: DefaultCompactionWatermark,
		Compression:         CompressionNone,
		ReaderCacheSize:     DefaultReaderCacheSize,
	}
}

func withDefaults(opts Options) Options {
	if opts.MaxKeySize == 0 {
		opts.MaxKeySize = MaxKeySize
	}
	if opts.MaxValueSize == 0 {
		opts.MaxValueSize = MaxValueSize
	}
	if opts.MaxSegmentSize == 0 {
		opts.MaxSegmentSize = DefaultMaxSegmentSize
	}
	if opts.CompactionWatermark == 0 {
		opts.CompactionWatermark = DefaultCompactionWatermark
	}
	if opts.ReaderCacheSize == 0 {
		opts.ReaderCacheSize = DefaultReaderCacheSize
	}
	return opts
}
