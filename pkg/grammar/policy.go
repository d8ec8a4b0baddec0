package grammar

import (
	"fmt"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
)

// Classifier decides the grammatical class of a symbol.
type Classifier interface {
	Classify(sym domain.Symbol) domain.Class
	String() string
}

// Policy names accepted by ParsePolicy.
const (
	PolicyRange       = "range"
	PolicyTerminalSet = "terminal-set"
)

// RangePolicy classifies symbols in [First, Last] as non-terminals and everything else as terminals.
type RangePolicy struct {
	First, Last domain.Symbol
}

func (p RangePolicy) Classify(sym domain.Symbol) domain.Class {
	if sym >= p.First && sym <= p.Last {
		return domain.ClassNonTerminal
	}
	return domain.ClassTerminal
}

func (p RangePolicy) String() string {
	return fmt.Sprintf("%s:%c-%c", PolicyRange, p.First, p.Last)
}

// TerminalSetPolicy classifies symbols in [First, Last] as non-terminals, the symbols listed
// in Terminals as terminals, and rejects everything else.
type TerminalSetPolicy struct {
	First, Last domain.Symbol
	Terminals   string
}

func (p TerminalSetPolicy) Classify(sym domain.Symbol) domain.Class {
	if sym >= p.First && sym <= p.Last {
		return domain.ClassNonTerminal
	}
	if strings.IndexByte(p.Terminals, byte(sym)) >= 0 {
		return domain.ClassTerminal
	}
	return domain.ClassInvalid
}

func (p TerminalSetPolicy) String() string {
	return fmt.Sprintf("%s:%c-%c:%s", PolicyTerminalSet, p.First, p.Last, p.Terminals)
}

// DefaultPolicy is the rule file policy: 'A'..'Z' are non-terminals, "_-0?" are terminals.
func DefaultPolicy() Classifier {
	return TerminalSetPolicy{First: 'A', Last: 'Z', Terminals: "_-0?"}
}

// ClassicPolicy is the policy of the built-in table variant: 'A'..'L' are non-terminals,
// everything else is a terminal.
func ClassicPolicy() Classifier {
	return RangePolicy{First: 'A', Last: 'L'}
}

// ParsePolicy builds a classifier from configuration values.
// nonTerminals is an inclusive range written as "A-Z".
func ParsePolicy(kind, nonTerminals, terminals string) (Classifier, error) {
	first, last, err := parseRange(nonTerminals)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(terminals); i++ {
		if c := domain.Symbol(terminals[i]); c >= first && c <= last {
			return nil, fmt.Errorf("terminal %q overlaps non-terminal range %q", rune(c), nonTerminals)
		}
	}

	switch kind {
	case PolicyRange:
		return RangePolicy{First: first, Last: last}, nil
	case PolicyTerminalSet, "":
		if terminals == "" {
			return nil, fmt.Errorf("policy %q requires a terminal set", PolicyTerminalSet)
		}
		return TerminalSetPolicy{First: first, Last: last, Terminals: terminals}, nil
	default:
		return nil, fmt.Errorf("unknown classification policy %q (expected %q or %q)", kind, PolicyRange, PolicyTerminalSet)
	}
}

func parseRange(s string) (domain.Symbol, domain.Symbol, error) {
	if len(s) != 3 || s[1] != '-' {
		return 0, 0, fmt.Errorf("invalid non-terminal range %q (expected e.g. \"A-Z\")", s)
	}
	first, last := domain.Symbol(s[0]), domain.Symbol(s[2])
	if first > last {
		return 0, 0, fmt.Errorf("invalid non-terminal range %q: %q > %q", s, rune(first), rune(last))
	}
	return first, last, nil
}
