package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
)

// Loader implements ports.RuleLoader from an in-memory map of rule name to replacement.
type Loader struct {
	rules   map[string]string
	literal bool
	opts    []grammar.Option
}

// NewLoader creates a loader over the given rules. Keys must be single characters.
// Options are applied before any options passed to Load.
func NewLoader(rules map[string]string, opts ...grammar.Option) *Loader {
	copied := make(map[string]string, len(rules))
	for k, v := range rules {
		copied[k] = v
	}
	return &Loader{rules: copied, opts: opts}
}

// NewLiteralLoader serves the built-in beat table (grammar.Literal).
func NewLiteralLoader(opts ...grammar.Option) *Loader {
	return &Loader{literal: true, opts: opts}
}

// Load builds the table.
func (l *Loader) Load(opts ...grammar.Option) (*grammar.Table, error) {
	all := append(append([]grammar.Option(nil), l.opts...), opts...)
	if l.literal {
		return grammar.Literal(all...), nil
	}

	rules := make(map[domain.Symbol]string, len(l.rules))
	for name, box := range l.rules {
		if len(name) != 1 {
			return nil, fmt.Errorf("rule name %q must be a single character", name)
		}
		rules[domain.Symbol(name[0])] = box
	}
	return grammar.New(rules, all...)
}

// Source identifies the loader in logs.
func (l *Loader) Source() string {
	if l.literal {
		return "builtin:literal"
	}
	return "memory"
}

// Names returns the configured rule names in sorted order.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.rules))
	for name := range l.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
