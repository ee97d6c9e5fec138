package bitlog

import (
	"testing"
)

func TestBoltEngineCrud(t *testing.T) {
	dir := t.TempDir()
	engine, err := OpenBolt(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := engine.Set("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := engine.Set("k", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, err := engine.Get("k")
	if err != nil || value != "v2" {
		t.Fatalf("get: %q %v", value, err)
	}
	if _, err := engine.Get("missing"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := engine.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := engine.Remove("k"); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound on double remove, got %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// State persists across reopen.
	engine2, err := OpenBolt(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer engine2.Close()
	_ = engine2.Set("p", "q")
	value, err = engine2.Get("p")
	if err != nil || value != "q" {
		t.Fatalf("get after reopen: %q %v", value, err)
	}
}
