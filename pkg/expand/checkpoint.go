package expand

import (
	"fmt"

	"github.com/aretw0/beatbox/pkg/domain"
)

// Snapshot captures the traversal so it can be persisted and resumed with Restore.
func (c *Cursor) Snapshot(id string) *domain.Checkpoint {
	return &domain.Checkpoint{
		ID:          id,
		Root:        c.Root(),
		Stack:       c.Stack(),
		Steps:       c.steps,
		Emitted:     c.emitted,
		Fingerprint: c.table.Fingerprint(),
	}
}

// Restore resumes a traversal captured by Snapshot.
// The checkpoint must come from a table with the same fingerprint, and its stack must
// describe a valid derivation path for its root sequence.
func (c *Cursor) Restore(cp *domain.Checkpoint) error {
	if cp.Fingerprint != c.table.Fingerprint() {
		return fmt.Errorf("%w: fingerprint %.12s, table %.12s", domain.ErrCheckpointMismatch, cp.Fingerprint, c.table.Fingerprint())
	}
	if err := c.table.ValidateSequence(cp.Root); err != nil {
		return err
	}
	if len(cp.Stack) == 0 {
		return fmt.Errorf("%w: empty position stack", domain.ErrCheckpointMismatch)
	}

	root := domain.Symbols(cp.Root)
	seq := root
	last := len(cp.Stack) - 1
	for level, pos := range cp.Stack[:last] {
		if !pos.IsIndex() || pos < 0 || int(pos) >= len(seq) {
			return fmt.Errorf("%w: level %d position %d out of range", domain.ErrCheckpointMismatch, level, pos)
		}
		if !c.table.IsNonTerminal(seq[pos]) {
			return fmt.Errorf("%w: level %d does not address a non-terminal", domain.ErrCheckpointMismatch, level)
		}
		seq = c.table.Box(seq[pos])
	}
	if top := cp.Stack[last]; top.IsIndex() && (top < 0 || int(top) > len(seq)) {
		return fmt.Errorf("%w: level %d position %d out of range", domain.ErrCheckpointMismatch, last, top)
	}

	c.root = root
	c.stack = append(c.stack[:0], cp.Stack...)
	c.steps = cp.Steps
	c.emitted = cp.Emitted
	return nil
}
