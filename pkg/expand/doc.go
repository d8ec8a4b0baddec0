/*
Package expand walks the expansion tree of a rule table without recursion.

A Cursor keeps an explicit position stack mirroring the derivation path from the root
sequence down to the currently active symbol. Each call to Advance performs exactly one
transition (descend into a non-terminal, ascend out of an exhausted box, step past an
emitted terminal, or mark a level exhausted) and yields at most one terminal:

	c := expand.New(table)
	if err := c.Start("L"); err != nil {
		return err
	}
	for !c.Done() {
		if sym, ok := c.Advance(); ok {
			emit(sym)
		}
	}

Because the whole traversal state lives in the stack, expansion depth is bounded only by
memory, and a traversal can be paused between calls, snapshotted into a
domain.Checkpoint and resumed later (even in another process) with Restore.

A Cursor is not safe for concurrent use. The *grammar.Table it is bound to is read-only
and may be shared by any number of cursors.
*/
package expand
