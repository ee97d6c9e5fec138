package pool

import "sync"

// SharedQueue runs a fixed set of long-lived workers pulling tasks from one
// shared channel. A task that panics is logged and discarded; the worker
// keeps serving the queue.
type SharedQueue struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewSharedQueue starts size workers.
func NewSharedQueue(size int) (*SharedQueue, error) {
	if size <= 0 {
		return nil, ErrZeroSize
	}
	p := &SharedQueue{tasks: make(chan func())}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p, nil
}

func (p *SharedQueue) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		runTask(task)
	}
}

// Spawn queues the task for the next idle worker.
func (p *SharedQueue) Spawn(task func()) {
	p.tasks <- task
}

// Close stops accepting tasks and waits for queued ones to finish.
func (p *SharedQueue) Close() {
	close(p.tasks)
	p.wg.Wait()
}
