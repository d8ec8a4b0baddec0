package grammar

import (
	"fmt"

	"github.com/aretw0/beatbox/pkg/domain"
)

// Builder accumulates rules before freezing them into a Table.
// A Builder is not safe for concurrent use.
type Builder struct {
	opts  options
	boxes map[domain.Symbol][]domain.Symbol
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		opts:  newOptions(opts),
		boxes: make(map[domain.Symbol][]domain.Symbol),
	}
}

// Policy returns the classification policy the builder validates against.
func (b *Builder) Policy() Classifier {
	return b.opts.policy
}

// Declare registers name with an empty box if it is not registered yet.
func (b *Builder) Declare(name domain.Symbol) error {
	if b.opts.policy.Classify(name) != domain.ClassNonTerminal {
		return &domain.SymbolError{Symbol: name, Index: -1, Err: fmt.Errorf("rule name is not a non-terminal")}
	}
	if _, ok := b.boxes[name]; !ok {
		b.boxes[name] = []domain.Symbol{}
	}
	return nil
}

// Append extends the box of name with syms, declaring name if needed.
func (b *Builder) Append(name domain.Symbol, syms ...domain.Symbol) error {
	if err := b.Declare(name); err != nil {
		return err
	}
	for i, sym := range syms {
		if b.opts.policy.Classify(sym) == domain.ClassInvalid {
			return &domain.SymbolError{Symbol: sym, Index: len(b.boxes[name]) + i, Rule: name, Err: domain.ErrUnknownSymbol}
		}
	}
	b.boxes[name] = append(b.boxes[name], syms...)
	return nil
}

// Add appends every character of replacement to the box of name.
// Adding to the same name twice accumulates in call order.
func (b *Builder) Add(name domain.Symbol, replacement string) error {
	return b.Append(name, domain.Symbols(replacement)...)
}

// Build validates the accumulated rules and returns the immutable table.
// Non-terminals referenced from a box but never declared fail with domain.ErrUnknownSymbol,
// unless the builder was created WithImplicitEmpty.
func (b *Builder) Build() (*Table, error) {
	t := &Table{
		policy:  b.opts.policy,
		lenient: b.opts.lenient,
		boxes:   make(map[domain.Symbol][]domain.Symbol, len(b.boxes)),
	}
	for name, box := range b.boxes {
		t.boxes[name] = append([]domain.Symbol(nil), box...)
	}

	for _, name := range t.Names() {
		for i, sym := range t.boxes[name] {
			if t.policy.Classify(sym) != domain.ClassNonTerminal {
				continue
			}
			if _, ok := t.boxes[sym]; ok || t.lenient {
				continue
			}
			return nil, &domain.SymbolError{Symbol: sym, Index: i, Rule: name, Err: domain.ErrUnknownSymbol}
		}
	}

	t.fingerprint = t.computeFingerprint()
	return t, nil
}
