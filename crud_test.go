package bitlog

import (
	"strconv"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	opts := DefaultOptions(t.TempDir())
	opts.SyncMode = SyncManual
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetGet(t *testing.T) {
	db := openTestDB(t)

	if err := db.Set("hello", "world"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := db.Get("hello")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "world" {
		t.Fatalf("expected %q, got %q", "world", value)
	}
}

func TestGetMissing(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Get("missing"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestOverwrite(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 10; i++ {
		if err := db.Set("k", strconv.Itoa(i)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	value, err := db.Get("k")
	if err != nil || value != "9" {
		t.Fatalf("expected last write, got %q %v", value, err)
	}
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)
	if err := db.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := db.Get("k"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound after remove, got %v", err)
	}
	if err := db.Remove("k"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound on double remove, got %v", err)
	}
}

func TestRemoveSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = db.Set("k", "v")
	if err := db.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_ = db.Close()

	db2, err := Open(DefaultOptions(dir))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	if _, err := db2.Get("k"); err != ErrKeyNotFound {
		t.Fatalf("expected removed key to stay gone, got %v", err)
	}
}

func TestExists(t *testing.T) {
	db := openTestDB(t)
	ok, err := db.Exists("k")
	if err != nil || ok {
		t.Fatalf("expected absent, got %v %v", ok, err)
	}
	_ = db.Set("k", "v")
	ok, err = db.Exists("k")
	if err != nil || !ok {
		t.Fatalf("expected present, got %v %v", ok, err)
	}
}

func TestKeyTooLarge(t *testing.T) {
	db := openTestDB(t)
	key := strings.Repeat("x", db.opts.MaxKeySize+1)
	if err := db.Set(key, "v"); err != ErrKeyTooLarge {
		t.Fatalf("expected ErrKeyTooLarge, got %v", err)
	}
	if _, err := db.Get(key); err != ErrKeyTooLarge {
		t.Fatalf("expected ErrKeyTooLarge, got %v", err)
	}
}

func TestValueTooLarge(t *testing.T) {
	opts := DefaultOptions(t.TempDir())
	opts.MaxValueSize = 8
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.Set("k", "123456789"); err != ErrValueTooLarge {
		t.Fatalf("expected ErrValueTooLarge, got %v", err)
	}
}

func TestCompressedValuesRoundTrip(t *testing.T) {
	codecs := []Compression{CompressionSnappy, CompressionLZ4, CompressionZstd}
	for _, codec := range codecs {
		opts := DefaultOptions(t.TempDir())
		opts.Compression = codec
		db, err := Open(opts)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		value := strings.Repeat("compressible ", 100)
		if err := db.Set("k", value); err != nil {
			t.Fatalf("set with %v: %v", codec, err)
		}
		got, err := db.Get("k")
		if err != nil || got != value {
			t.Fatalf("round trip with %v failed: %v", codec, err)
		}
		_ = db.Close()
	}
}

func TestCodecChangeLeavesOldRecordsReadable(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = db.Set("plain", "v1")
	_ = db.Close()

	opts.Compression = CompressionSnappy
	db2, err := Open(opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	_ = db2.Set("packed", "v2")
	for key, want := range map[string]string{"plain": "v1", "packed": "v2"} {
		got, err := db2.Get(key)
		if err != nil || got != want {
			t.Fatalf("get %s: %q %v", key, got, err)
		}
	}
}
