package expand

import (
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
)

// Cursor is a resumable, pull-based traversal over a rule table.
type Cursor struct {
	table *grammar.Table
	hooks domain.LifecycleHooks

	root  []domain.Symbol
	stack []domain.Position

	steps   int
	emitted int
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithHooks registers observability hooks fired from Advance.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Cursor) {
		c.hooks = c.hooks.Merge(hooks)
	}
}

// New creates an idle cursor bound to table. It reports Done until Start is called.
func New(table *grammar.Table, opts ...Option) *Cursor {
	c := &Cursor{
		table: table,
		stack: []domain.Position{domain.End},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the rule table the cursor is bound to.
func (c *Cursor) Table() *grammar.Table {
	return c.table
}

// Start resets the cursor to the beginning of root.
// It fails with domain.ErrMalformedStartSequence if root contains a symbol that is neither
// a terminal nor a registered non-terminal; the cursor is left untouched in that case.
func (c *Cursor) Start(root string) error {
	if err := c.table.ValidateSequence(root); err != nil {
		return err
	}
	c.root = domain.Symbols(root)
	c.stack = append(c.stack[:0], domain.Begin)
	c.steps = 0
	c.emitted = 0
	return nil
}

// Done reports whether the traversal is finished, i.e. the stack is exactly [End].
func (c *Cursor) Done() bool {
	return len(c.stack) == 1 && c.stack[0] == domain.End
}

// Advance performs one transition and returns the terminal it produced, if any.
// Once Done, Advance is a no-op that keeps returning false.
func (c *Cursor) Advance() (domain.Symbol, bool) {
	top := len(c.stack) - 1

	switch c.stack[top] {
	case domain.Begin:
		c.steps++
		seq := c.sequence()
		if len(seq) == 0 {
			c.exhaust(top)
			return 0, false
		}
		c.stack[top] = 0
		c.descendIf(seq[0])
		return 0, false

	case domain.End:
		if top == 0 {
			return 0, false
		}
		c.steps++
		c.stack = c.stack[:top]
		top--
		c.fire(c.hooks.OnAscend, domain.EventAscend, 0)
		seq := c.sequence()
		next := c.stack[top] + 1
		if int(next) >= len(seq) {
			c.exhaust(top)
		} else {
			c.stack[top] = next
			c.descendIf(seq[next])
		}
		return 0, false
	}

	c.steps++
	seq := c.sequence()
	idx := c.stack[top]
	if int(idx) >= len(seq) {
		c.exhaust(top)
		return 0, false
	}
	sym := seq[idx]
	if c.descendIf(sym) {
		return 0, false
	}
	c.stack[top] = idx + 1
	c.emitted++
	c.fire(c.hooks.OnEmit, domain.EventEmit, sym)
	return sym, true
}

// sequence resolves the sequence indexed by the last stack element by walking every
// outer level from the root.
func (c *Cursor) sequence() []domain.Symbol {
	seq := c.root
	for _, pos := range c.stack[:len(c.stack)-1] {
		seq = c.table.Box(seq[pos])
	}
	return seq
}

// descendIf pushes a new level when sym is a non-terminal.
func (c *Cursor) descendIf(sym domain.Symbol) bool {
	if !c.table.IsNonTerminal(sym) {
		return false
	}
	c.stack = append(c.stack, domain.Begin)
	c.fire(c.hooks.OnDescend, domain.EventDescend, sym)
	return true
}

func (c *Cursor) exhaust(level int) {
	c.stack[level] = domain.End
	if level == 0 {
		c.fire(c.hooks.OnDone, domain.EventDone, 0)
	}
}

func (c *Cursor) fire(hook func(*domain.Event), typ domain.EventType, sym domain.Symbol) {
	if hook == nil {
		return
	}
	hook(&domain.Event{
		Timestamp: time.Now(),
		Type:      typ,
		Symbol:    sym,
		Depth:     len(c.stack),
		Emitted:   c.emitted,
	})
}

// Depth returns the current length of the position stack.
func (c *Cursor) Depth() int {
	return len(c.stack)
}

// Stack returns a copy of the position stack, outermost level first.
func (c *Cursor) Stack() []domain.Position {
	return append([]domain.Position(nil), c.stack...)
}

// Steps returns the number of transitions performed since Start.
func (c *Cursor) Steps() int {
	return c.steps
}

// Emitted returns the number of terminals produced since Start.
func (c *Cursor) Emitted() int {
	return c.emitted
}

// Root returns the sequence the cursor was started with.
func (c *Cursor) Root() string {
	return string(symbolBytes(c.root))
}

// String renders the position stack as dotted levels, e.g. "0.3.BEGIN".
func (c *Cursor) String() string {
	return FormatStack(c.stack)
}

// FormatStack renders a position stack as dotted levels.
func FormatStack(stack []domain.Position) string {
	parts := make([]string, len(stack))
	for i, p := range stack {
		switch p {
		case domain.Begin:
			parts[i] = "BEGIN"
		case domain.End:
			parts[i] = "END"
		default:
			parts[i] = strconv.Itoa(int(p))
		}
	}
	return strings.Join(parts, ".")
}

func symbolBytes(seq []domain.Symbol) []byte {
	b := make([]byte, len(seq))
	for i, s := range seq {
		b[i] = byte(s)
	}
	return b
}
