package bitlog

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Sync flushes and fsyncs the active segment.
func (db *DB) Sync() error {
	if db.closed.Load() {
		return ErrClosed
	}
	return db.log.Sync()
}

func (db *DB) startSyncWorker(interval time.Duration) {
	db.syncTicker = time.NewTicker(interval)
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		for {
			select {
			case <-db.syncTicker.C:
				if err := db.log.Sync(); err != nil {
					logrus.WithError(err).Warn("periodic sync failed")
				}
			case <-db.stopCh:
				return
			}
		}
	}()
}

func (db *DB) stopWorkers() {
	close(db.stopCh)
	if db.syncTicker != nil {
		db.syncTicker.Stop()
	}
	db.wg.Wait()
}
