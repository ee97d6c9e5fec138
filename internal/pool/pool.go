// Package pool provides the worker-scheduling strategies the server uses to
// run client requests concurrently. Every variant exposes the same
// fire-and-forget Spawn contract, and a panicking task is contained and
// logged without taking down a worker or the pool.
package pool

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Pool schedules tasks onto workers.
type Pool interface {
	Spawn(task func())
}

// Kind selects a pool implementation.
type Kind string

const (
	// KindUnbounded starts a fresh goroutine per task.
	KindUnbounded Kind = "unbounded"
	// KindSharedQueue runs a fixed set of workers draining one queue.
	KindSharedQueue Kind = "shared-queue"
	// KindBalanced hands tasks to the runtime scheduler with a concurrency
	// cap, letting it balance them across cores.
	KindBalanced Kind = "balanced"
)

// ErrZeroSize is returned when a sized pool is requested with no workers.
var ErrZeroSize = errors.New("pool: size must be positive")

// New builds a pool of the given kind. size is ignored by the unbounded
// variant.
func New(kind Kind, size int) (Pool, error) {
	switch kind {
	case KindUnbounded:
		return NewUnbounded(), nil
	case KindSharedQueue:
		return NewSharedQueue(size)
	case KindBalanced:
		return NewBalanced(size)
	default:
		return nil, errors.New("pool: unknown kind " + string(kind))
	}
}

// runTask executes one task, converting a panic into a log line so the
// failure stays contained to the task.
func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("task panicked, worker recovered")
		}
	}()
	task()
}
