// Package compensate records undo steps for work that cannot join a database
// transaction, such as files written to blob storage, and runs them in reverse
// order when the surrounding operation fails.
package compensate

import (
	"context"
	"errors"
	"sync"
)

// Step undoes one unit of work.
type Step func(ctx context.Context) error

// Compensator is a LIFO list of undo steps. The zero value is ready to use.
type Compensator struct {
	mu    sync.Mutex
	steps []Step
}

// Add registers an undo step.
func (c *Compensator) Add(step Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, step)
}

// Len returns the number of pending steps.
func (c *Compensator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.steps)
}

// Run executes every pending step, last added first, and clears the list.
// A failing step does not stop the remaining ones; all failures are joined.
func (c *Compensator) Run(ctx context.Context) error {
	c.mu.Lock()
	steps := c.steps
	c.steps = nil
	c.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Discard drops all pending steps, used once the operation has committed.
func (c *Compensator) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = nil
}
