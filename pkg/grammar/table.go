package grammar

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/zeebo/blake3"
)

// Table is an immutable mapping from non-terminal symbols to their replacement sequences.
// It is safe for concurrent use by multiple readers.
type Table struct {
	policy      Classifier
	boxes       map[domain.Symbol][]domain.Symbol
	lenient     bool
	fingerprint string
}

// Option configures table construction.
type Option func(*options)

type options struct {
	policy  Classifier
	lenient bool
}

// WithPolicy sets the classification policy (default: DefaultPolicy).
func WithPolicy(p Classifier) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithImplicitEmpty makes referenced but undefined non-terminals expand to nothing
// instead of failing construction with domain.ErrUnknownSymbol.
func WithImplicitEmpty() Option {
	return func(o *options) {
		o.lenient = true
	}
}

func newOptions(opts []Option) options {
	o := options{policy: DefaultPolicy()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds a table from literal definitions.
// Every character of every replacement must be a terminal or a non-terminal under the policy.
func New(rules map[domain.Symbol]string, opts ...Option) (*Table, error) {
	b := NewBuilder(opts...)
	// Sorted for deterministic error reporting.
	names := make([]domain.Symbol, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if err := b.Add(name, rules[name]); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// MustNew is like New but panics on error. Intended for static tables and tests.
func MustNew(rules map[domain.Symbol]string, opts ...Option) *Table {
	t, err := New(rules, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Policy returns the classification policy of the table.
func (t *Table) Policy() Classifier {
	return t.policy
}

// Classify returns the class of sym under the table's policy.
func (t *Table) Classify(sym domain.Symbol) domain.Class {
	return t.policy.Classify(sym)
}

// IsNonTerminal reports whether sym is expanded through the table.
func (t *Table) IsNonTerminal(sym domain.Symbol) bool {
	return t.policy.Classify(sym) == domain.ClassNonTerminal
}

// IsTerminal reports whether sym is emitted as output.
func (t *Table) IsTerminal(sym domain.Symbol) bool {
	return t.policy.Classify(sym) == domain.ClassTerminal
}

// Has reports whether sym has a registered box.
func (t *Table) Has(sym domain.Symbol) bool {
	_, ok := t.boxes[sym]
	return ok
}

// Lenient reports whether unregistered non-terminals expand to nothing.
func (t *Table) Lenient() bool {
	return t.lenient
}

// Lookup returns a copy of the replacement sequence registered for sym.
// It fails with domain.ErrUnknownSymbol when sym was never registered, unless the
// table was built WithImplicitEmpty, in which case any non-terminal yields an empty box.
func (t *Table) Lookup(sym domain.Symbol) ([]domain.Symbol, error) {
	box, ok := t.boxes[sym]
	if ok {
		return slices.Clone(box), nil
	}
	if t.lenient && t.IsNonTerminal(sym) {
		return nil, nil
	}
	return nil, &domain.SymbolError{Symbol: sym, Index: -1, Err: domain.ErrUnknownSymbol}
}

// Box returns the shared replacement slice without copying; callers must not modify it.
// Unregistered symbols yield nil, which is only reachable through lenient tables.
func (t *Table) Box(sym domain.Symbol) []domain.Symbol {
	return t.boxes[sym]
}

// Names returns the registered non-terminals in ascending order.
func (t *Table) Names() []domain.Symbol {
	names := make([]domain.Symbol, 0, len(t.boxes))
	for name := range t.boxes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered non-terminals.
func (t *Table) Len() int {
	return len(t.boxes)
}

// Rules returns a copy of the table as name → replacement strings.
func (t *Table) Rules() map[string]string {
	out := make(map[string]string, len(t.boxes))
	for name, box := range t.boxes {
		out[name.String()] = symbolsToString(box)
	}
	return out
}

// Fingerprint identifies the table contents and policy.
// Two tables with the same fingerprint expand every sequence identically.
func (t *Table) Fingerprint() string {
	return t.fingerprint
}

// ValidateSequence checks that every symbol of seq is a terminal or a registered
// non-terminal. It returns a *domain.SymbolError wrapping domain.ErrMalformedStartSequence.
func (t *Table) ValidateSequence(seq string) error {
	for i := 0; i < len(seq); i++ {
		sym := domain.Symbol(seq[i])
		switch t.Classify(sym) {
		case domain.ClassTerminal:
			continue
		case domain.ClassNonTerminal:
			if t.Has(sym) || t.lenient {
				continue
			}
		}
		return &domain.SymbolError{Symbol: sym, Index: i, Err: domain.ErrMalformedStartSequence}
	}
	return nil
}

func (t *Table) computeFingerprint() string {
	h := blake3.New()
	fmt.Fprintf(h, "policy: %s\nlenient: %t\n", t.policy, t.lenient)
	for _, name := range t.Names() {
		fmt.Fprintf(h, "%c: %s\n", name, symbolsToString(t.boxes[name]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func symbolsToString(seq []domain.Symbol) string {
	b := make([]byte, len(seq))
	for i, s := range seq {
		b[i] = byte(s)
	}
	return string(b)
}
