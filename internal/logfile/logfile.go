// Package logfile manages the append-only segment files that hold the
// database's commands. The highest-numbered segment is the active one and
// receives appends; lower-numbered segments are sealed and read-only.
package logfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bretuobay/bitlog/internal/keydir"
)

// Manager owns the active segment and allocates segment ids.
type Manager struct {
	mu      sync.Mutex
	dir     string
	maxSize int64
	active  *Appender
	nextSeq uint64
}

// Open creates or opens a segment directory and prepares the active segment.
// The highest-numbered existing segment becomes the active one; a fresh
// directory starts at segment 1.
func Open(dir string, maxSize int64) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	segments, err := ListSegments(dir)
	if err != nil {
		return nil, err
	}
	seq := uint64(1)
	if len(segments) > 0 {
		seq = segments[len(segments)-1].Seq
	}
	active, err := NewAppender(dir, seq)
	if err != nil {
		return nil, err
	}
	return &Manager{
		dir:     dir,
		maxSize: maxSize,
		active:  active,
		nextSeq: seq + 1,
	}, nil
}

// Append encodes the record and writes it to the active segment, rotating
// first if the segment would exceed the size limit. The returned meta
// locates the record on disk. Buffered data is flushed before returning so
// concurrent readers can pread the bytes immediately.
func (m *Manager) Append(rec Record) (keydir.Meta, error) {
	encoded, err := EncodeRecord(rec)
	if err != nil {
		return keydir.Meta{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return keydir.Meta{}, os.ErrClosed
	}
	if m.maxSize > 0 && m.active.Size() > 0 && m.active.Size()+int64(len(encoded)) > m.maxSize {
		if err := m.rotate(); err != nil {
			return keydir.Meta{}, err
		}
	}
	meta, err := m.active.appendEncoded(encoded)
	if err != nil {
		return keydir.Meta{}, err
	}
	if err := m.active.Flush(); err != nil {
		return keydir.Meta{}, err
	}
	return meta, nil
}

// Sync flushes and fsyncs the active segment.
func (m *Manager) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return os.ErrClosed
	}
	return m.active.Sync()
}

// Close syncs and closes the active segment handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	err := m.active.Close()
	m.active = nil
	return err
}

// ActiveSeq returns the id of the segment currently receiving appends.
func (m *Manager) ActiveSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return 0
	}
	return m.active.Seq()
}

// StartCompaction seals the current active segment and allocates two fresh
// ids: the lower one for the compaction target, the higher one for the new
// active segment. Every record in a segment below the target id is eligible
// for rewriting, and because the target sorts before the new active segment,
// replaying the directory in ascending order still applies relocated (older)
// commands before any write that lands during the compaction walk.
//
// The target appender writes to a temporary name; it only becomes a real
// segment via Finalize, so a crash mid-compaction leaves nothing for
// recovery to misread.
func (m *Manager) StartCompaction() (sealBelow uint64, target *Appender, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return 0, nil, os.ErrClosed
	}

	targetSeq := m.nextSeq
	target, err = newTempAppender(m.dir, targetSeq)
	if err != nil {
		return 0, nil, err
	}
	newActive, err := NewAppender(m.dir, targetSeq+1)
	if err != nil {
		_ = target.Abort()
		return 0, nil, err
	}
	if err := m.active.Close(); err != nil {
		_ = target.Abort()
		_ = newActive.Close()
		return 0, nil, err
	}
	m.active = newActive
	m.nextSeq = targetSeq + 2
	return targetSeq, target, nil
}

func (m *Manager) rotate() error {
	if err := m.active.Sync(); err != nil {
		return err
	}
	if err := m.active.Close(); err != nil {
		return err
	}
	next, err := NewAppender(m.dir, m.nextSeq)
	if err != nil {
		return err
	}
	m.active = next
	m.nextSeq++
	return nil
}

// Appender writes encoded records to the tail of one segment file.
type Appender struct {
	file *os.File
	w    *bufio.Writer
	seq  uint64
	size int64
	path string
	// temp is set for compaction targets, which live under a .tmp name
	// until Finalize renames them into the segment namespace.
	temp bool
}

// NewAppender opens (or creates) the segment with the given id for appends.
func NewAppender(dir string, seq uint64) (*Appender, error) {
	return openAppender(filepath.Join(dir, SegmentName(seq)), seq, false)
}

func newTempAppender(dir string, seq uint64) (*Appender, error) {
	return openAppender(filepath.Join(dir, SegmentName(seq)+tmpSuffix), seq, true)
}

func openAppender(path string, seq uint64, temp bool) (*Appender, error) {
	flags := os.O_CREATE | os.O_APPEND | os.O_WRONLY
	if temp {
		flags = os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &Appender{
		file: file,
		w:    bufio.NewWriter(file),
		seq:  seq,
		size: info.Size(),
		path: path,
		temp: temp,
	}, nil
}

// Append encodes and writes one record, returning its location.
func (a *Appender) Append(rec Record) (keydir.Meta, error) {
	encoded, err := EncodeRecord(rec)
	if err != nil {
		return keydir.Meta{}, err
	}
	return a.appendEncoded(encoded)
}

func (a *Appender) appendEncoded(encoded []byte) (keydir.Meta, error) {
	offset := a.size
	n, err := a.w.Write(encoded)
	if err != nil {
		return keydir.Meta{}, err
	}
	a.size += int64(n)
	return keydir.Meta{Segment: a.seq, Offset: offset, Length: int64(n)}, nil
}

// Flush pushes buffered bytes to the OS.
func (a *Appender) Flush() error {
	return a.w.Flush()
}

// Sync flushes buffered bytes and fsyncs the file.
func (a *Appender) Sync() error {
	if err := a.w.Flush(); err != nil {
		return err
	}
	return a.file.Sync()
}

// Close syncs and closes the file handle.
func (a *Appender) Close() error {
	if err := a.Sync(); err != nil {
		_ = a.file.Close()
		return err
	}
	return a.file.Close()
}

// Finalize syncs and closes a temporary compaction target, then renames it
// into the segment namespace. The rename is the point at which the target
// becomes visible to recovery.
func (a *Appender) Finalize() error {
	if !a.temp {
		return a.Close()
	}
	if err := a.Close(); err != nil {
		_ = os.Remove(a.path)
		return err
	}
	return os.Rename(a.path, SegmentPath(filepath.Dir(a.path), a.seq))
}

// Abort discards a temporary compaction target.
func (a *Appender) Abort() error {
	_ = a.file.Close()
	return os.Remove(a.path)
}

// Seq returns the segment id this appender writes to.
func (a *Appender) Seq() uint64 {
	return a.seq
}

// Size returns the segment size including buffered bytes.
func (a *Appender) Size() int64 {
	return a.size
}

const tmpSuffix = ".tmp"

// RemoveStrayTemps deletes leftover temporary compaction targets. A temp
// file only exists if a previous process crashed mid-compaction; its
// contents were never referenced by any index.
func RemoveStrayTemps(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+tmpSuffix))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

// SegmentName formats the on-disk file name for a segment id.
func SegmentName(seq uint64) string {
	return fmt.Sprintf("%09d.log", seq)
}

// SegmentPath returns the full path of a segment file.
func SegmentPath(dir string, seq uint64) string {
	return filepath.Join(dir, SegmentName(seq))
}
