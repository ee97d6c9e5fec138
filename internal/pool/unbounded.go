package pool

// Unbounded spawns one goroutine per task with no reuse. The simplest
// strategy; cost is a goroutine per request.
type Unbounded struct{}

// NewUnbounded creates the goroutine-per-task pool.
func NewUnbounded() *Unbounded {
	return &Unbounded{}
}

// Spawn runs the task on a fresh goroutine.
func (p *Unbounded) Spawn(task func()) {
	go runTask(task)
}
