package pool

import "golang.org/x/sync/errgroup"

// Balanced delegates scheduling to the Go runtime, capped at size
// in-flight tasks. The runtime's work-stealing scheduler spreads the
// goroutines across cores; Spawn blocks while the cap is reached, which
// gives the server natural backpressure.
type Balanced struct {
	group *errgroup.Group
}

// NewBalanced creates a runtime-scheduled pool with the given cap.
func NewBalanced(size int) (*Balanced, error) {
	if size <= 0 {
		return nil, ErrZeroSize
	}
	g := new(errgroup.Group)
	g.SetLimit(size)
	return &Balanced{group: g}, nil
}

// Spawn runs the task under the concurrency cap.
func (p *Balanced) Spawn(task func()) {
	p.group.Go(func() error {
		runTask(task)
		return nil
	})
}

// Wait blocks until all spawned tasks have finished.
func (p *Balanced) Wait() {
	_ = p.group.Wait()
}
