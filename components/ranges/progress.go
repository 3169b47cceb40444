package ranges

import (
	"sync"

	"github.com/keplerlabs/rollnode/types"
)

// Progress tracks which windows of a migration sweep have completed.
// One writer (the migration hook), any number of snapshot readers.
type Progress struct {
	mu     sync.Mutex
	target uint64
	done   Sections
}

// Status is a point-in-time view of a sweep, served by the status server.
type Status struct {
	Target    uint64   `json:"target"`
	Migrated  Sections `json:"migrated"`
	Remaining uint64   `json:"remaining"`
	Complete  bool     `json:"complete"`
}

// NewProgress tracks a sweep over blocks 0..=target.
func NewProgress(target types.BlockNumber) *Progress {
	return &Progress{target: uint64(target)}
}

// MarkDone records a completed window.
func (p *Progress) MarkDone(chunk types.BlockRange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = Merge(append(p.done, Section{
		StartIdx: uint64(chunk.Start),
		EndIdx:   uint64(chunk.End),
	}))
}

func (p *Progress) Snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	covered := Covered(p.done)
	migrated := make(Sections, len(p.done))
	copy(migrated, p.done)

	total := p.target + 1
	return Status{
		Target:    p.target,
		Migrated:  migrated,
		Remaining: total - covered,
		Complete:  covered == total,
	}
}
