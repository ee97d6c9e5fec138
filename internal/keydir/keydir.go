// Package keydir holds the in-memory index mapping each live key to the
// location of its latest command on disk.
package keydir

import (
	"maps"
	"sync"
)

// Meta locates one command inside a segment file.
type Meta struct {
	Segment uint64
	Offset  int64
	Length  int64
}

// Dir is the key index. One Dir instance is current at a time; compaction
// builds a replacement Dir and swaps it in behind an atomic pointer, so a
// Dir is only ever mutated through its own lock, never rebuilt in place.
type Dir struct {
	mu      sync.RWMutex
	entries map[string]Meta
}

// New creates an empty key directory.
func New() *Dir {
	return &Dir{entries: make(map[string]Meta)}
}

// NewWithCapacity creates an empty key directory sized for n keys.
func NewWithCapacity(n int) *Dir {
	return &Dir{entries: make(map[string]Meta, n)}
}

// Get returns the location of the latest command for key.
func (d *Dir) Get(key string) (Meta, bool) {
	d.mu.RLock()
	meta, ok := d.entries[key]
	d.mu.RUnlock()
	return meta, ok
}

// Put records the location of the latest command for key and returns the
// location it superseded, if any.
func (d *Dir) Put(key string, meta Meta) (Meta, bool) {
	d.mu.Lock()
	prev, existed := d.entries[key]
	d.entries[key] = meta
	d.mu.Unlock()
	return prev, existed
}

// Delete removes key from the directory and returns the location its last
// command occupied, if any.
func (d *Dir) Delete(key string) (Meta, bool) {
	d.mu.Lock()
	prev, existed := d.entries[key]
	if existed {
		delete(d.entries, key)
	}
	d.mu.Unlock()
	return prev, existed
}

// Contains reports whether key has a live entry.
func (d *Dir) Contains(key string) bool {
	d.mu.RLock()
	_, ok := d.entries[key]
	d.mu.RUnlock()
	return ok
}

// Len returns the number of live keys.
func (d *Dir) Len() int {
	d.mu.RLock()
	n := len(d.entries)
	d.mu.RUnlock()
	return n
}

// Snapshot returns a copy of the current entries.
func (d *Dir) Snapshot() map[string]Meta {
	d.mu.RLock()
	clone := maps.Clone(d.entries)
	d.mu.RUnlock()
	return clone
}
