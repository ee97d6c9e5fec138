package bitlog

// Engine is the storage contract the server programs against. Both the log
// engine (DB) and the Bolt-backed alternative implement it; any other
// embedded backend can be substituted as long as it honors the same
// semantics: linearizable single-key operations, durable on return, and
// ErrKeyNotFound from Remove when the key has no live entry.
type Engine interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Remove deletes key, or returns ErrKeyNotFound if it does not exist.
	Remove(key string) error

	// Close flushes pending work and releases resources.
	Close() error
}

var (
	_ Engine = (*DB)(nil)
	_ Engine = (*BoltEngine)(nil)
)
