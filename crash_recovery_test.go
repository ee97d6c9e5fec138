package bitlog

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bretuobay/bitlog/internal/logfile"
)

// crash releases the directory lock without flushing or closing anything,
// approximating a process kill.
func crash(db *DB) {
	_ = db.lockFile.Close()
	db.lockFile = nil
}

func TestCrashRecoverySimulation(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)

	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Set("alpha", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	crash(db)

	db2, err := Open(opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	value, err := db2.Get("alpha")
	if err != nil || value != "1" {
		t.Fatalf("expected recovered value, got %q %v", value, err)
	}
}

func TestTornTailIsTruncated(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)

	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = db.Set("k", "v")
	crash(db)

	// Append a record header that claims more bytes than follow.
	segPath := logfile.SegmentPath(dir, 1)
	f, err := os.OpenFile(segPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open segment: %v", err)
	}
	if _, err := f.Write([]byte{200, 1, 0xde, 0xad}); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	_ = f.Close()

	db2, err := Open(opts)
	if err != nil {
		t.Fatalf("reopen with torn tail: %v", err)
	}
	defer db2.Close()
	value, err := db2.Get("k")
	if err != nil || value != "v" {
		t.Fatalf("expected value before torn tail, got %q %v", value, err)
	}

	// The torn bytes must be gone so a later reopen stays clean.
	if err := db2.Set("k2", "v2"); err != nil {
		t.Fatalf("set after recovery: %v", err)
	}
}

func TestCorruptSealedSegmentRefusesOpen(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)
	opts.MaxSegmentSize = 64
	opts.SyncMode = SyncManual

	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := db.Set("k"+strconv.Itoa(i), "some value long enough to rotate"); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	crash(db)

	segments, err := logfile.ListSegments(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(segments) < 2 {
		t.Fatalf("expected rotation to produce sealed segments, got %d", len(segments))
	}

	// Torn data in a sealed segment is unrecoverable.
	f, err := os.OpenFile(segments[0].Path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open segment: %v", err)
	}
	_, _ = f.Write([]byte{200, 1})
	_ = f.Close()

	if _, err := Open(opts); err == nil {
		t.Fatal("expected ErrCorruptLog")
	}
}

func TestStrayTempFilesRemovedOnOpen(t *testing.T) {
	dir := t.TempDir()
	stray := filepath.Join(dir, "000000005.log.tmp")
	if err := os.WriteFile(stray, []byte("half-written"), 0o644); err != nil {
		t.Fatalf("write stray: %v", err)
	}

	db, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(stray); !os.IsNotExist(err) {
		t.Fatalf("expected stray temp removed, stat: %v", err)
	}
}

func TestRecoveryIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)

	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = db.Set("a", "1")
	_ = db.Set("b", "2")
	_ = db.Remove("a")
	crash(db)

	for round := 0; round < 3; round++ {
		db, err := Open(opts)
		if err != nil {
			t.Fatalf("reopen %d: %v", round, err)
		}
		if _, err := db.Get("a"); err != ErrKeyNotFound {
			t.Fatalf("round %d: expected a removed, got %v", round, err)
		}
		value, err := db.Get("b")
		if err != nil || value != "2" {
			t.Fatalf("round %d: expected b=2, got %q %v", round, value, err)
		}
		crash(db)
	}
}
