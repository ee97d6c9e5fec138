package bitlog

import (
	"syscall"
)

// Close syncs and closes the database and releases the directory lock.
// Further calls return ErrClosed.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return ErrClosed
	}

	db.stopWorkers()

	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	err := db.log.Close()
	db.readers.purge()

	if db.lockFile != nil {
		_ = syscall.Flock(int(db.lockFile.Fd()), syscall.LOCK_UN)
		_ = db.lockFile.Close()
		db.lockFile = nil
	}
	return err
}
