// Package runner guards parts of the server that must only be run once.
package runner

import (
	"fmt"
	"sync"
)

type runState int

const (
	notRun runState = iota
	running
	finished
)

// Runner tracks whether a component has been run.  The zero value is ready
// to use.
type Runner struct {
	mu    sync.Mutex
	state runState
}

// Begin marks the runner as running.  An error is returned if it has already
// begun or finished.
func (r *Runner) Begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != notRun {
		return fmt.Errorf("already running or finished, it can only be run once")
	}
	r.state = running
	return nil
}

// Finish marks the runner as finished.  It cannot be begun again.
func (r *Runner) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = finished
}

// IsRunning determines if the runner has begun and not yet finished.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == running
}
