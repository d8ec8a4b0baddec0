package domain

// Checkpoint is a serialisable snapshot of a paused traversal.
// It is designed for "Stop & Resume": a cursor restored from a checkpoint
// continues emitting exactly where the saved cursor left off.
type Checkpoint struct {
	// ID identifies the checkpoint in a store.
	ID string `json:"id"`

	// Root is the start sequence the traversal was started with.
	Root string `json:"root"`

	// Stack is a copy of the position stack.
	Stack []Position `json:"stack"`

	// Steps counts Advance calls since Start.
	Steps int `json:"steps"`

	// Emitted counts terminals produced since Start.
	Emitted int `json:"emitted"`

	// Fingerprint identifies the rule table the traversal is bound to.
	Fingerprint string `json:"fingerprint"`
}

// Done reports whether the snapshot was taken after the traversal finished.
func (c *Checkpoint) Done() bool {
	return len(c.Stack) == 1 && c.Stack[0] == End
}

// Clone returns a deep copy of the checkpoint.
func (c *Checkpoint) Clone() *Checkpoint {
	if c == nil {
		return nil
	}
	next := *c
	next.Stack = append([]Position(nil), c.Stack...)
	return &next
}
