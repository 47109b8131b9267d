package workflow

import (
	"sync/atomic"

	"conform/internal/replace"
)

// Progress counts terminal states across a running batch. Safe for
// concurrent use; the replacement goroutines and the caller's display both
// touch it.
type Progress struct {
	completed atomic.Int64
	failed    atomic.Int64
}

// Observe folds one terminal result into the counters.
func (p *Progress) Observe(res replace.Result) {
	if res.State == replace.StateFailed {
		p.failed.Add(1)
		return
	}
	p.completed.Add(1)
}

// Snapshot returns the current counts.
func (p *Progress) Snapshot() (completed, failed int64) {
	return p.completed.Load(), p.failed.Load()
}
