package submission

import (
	"github.com/op/go-logging"
)

// DetachedTask is a unit of best-effort work whose failure is
// observed (logged) but never awaited by the caller: confirmation
// webhooks, sync diagnostics, anything whose failure must not become
// a submission failure. The type makes the essential/best-effort
// distinction explicit instead of burying it in a bare goroutine.
type DetachedTask struct {
	Name   string
	logger *logging.Logger
	done   chan struct{}
	err    error
}

// Detach runs fn on its own goroutine and returns immediately.
func Detach(name string, logger *logging.Logger, fn func() error) *DetachedTask {
	task := &DetachedTask{
		Name:   name,
		logger: logger,
		done:   make(chan struct{}),
	}
	go task.run(fn)
	return task
}

func (t *DetachedTask) run(fn func() error) {
	defer close(t.done)
	t.err = fn()
	if t.err != nil {
		t.logger.Warningf("Detached task '%s' failed: %v", t.Name, t.err)
	}
}

// Wait blocks until the task finishes and returns its error.
// Production callers never wait; tests do.
func (t *DetachedTask) Wait() error {
	<-t.done
	return t.err
}
