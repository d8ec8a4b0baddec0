package expand

import (
	"iter"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
)

// Terminals returns an iterator over the remaining terminals of the traversal.
// Breaking out of the loop leaves the cursor paused where it stopped.
func (c *Cursor) Terminals() iter.Seq[domain.Symbol] {
	return func(yield func(domain.Symbol) bool) {
		for !c.Done() {
			sym, ok := c.Advance()
			if ok && !yield(sym) {
				return
			}
		}
	}
}

// Collect expands root completely and returns the terminal stream as a string.
// It does not terminate for tables whose expansion is unbounded; see runner.WithMaxSteps.
func Collect(table *grammar.Table, root string) (string, error) {
	c := New(table)
	if err := c.Start(root); err != nil {
		return "", err
	}
	var sb strings.Builder
	for sym := range c.Terminals() {
		sb.WriteByte(byte(sym))
	}
	return sb.String(), nil
}

// Count expands root completely and returns the number of terminals produced.
func Count(table *grammar.Table, root string) (int, error) {
	c := New(table)
	if err := c.Start(root); err != nil {
		return 0, err
	}
	for !c.Done() {
		c.Advance()
	}
	return c.Emitted(), nil
}
