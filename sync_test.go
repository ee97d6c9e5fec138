package bitlog

import (
	"testing"
	"time"
)

func TestManualSync(t *testing.T) {
	opts := DefaultOptions(t.TempDir())
	opts.SyncMode = SyncManual
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if err := db.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestPeriodicSyncWorkerStops(t *testing.T) {
	opts := DefaultOptions(t.TempDir())
	opts.SyncMode = SyncPeriodic
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- db.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("close did not stop the sync worker")
	}
}
