package domain

import "math"

// Symbol is a single grammar character.
type Symbol byte

// String returns the symbol as a one character string.
func (s Symbol) String() string {
	return string(rune(s))
}

// Class is the grammatical class of a Symbol under a classification policy.
type Class int

const (
	ClassInvalid     Class = iota // Not part of the alphabet
	ClassTerminal                 // Emitted as output
	ClassNonTerminal              // Expanded through the rule table
)

func (c Class) String() string {
	switch c {
	case ClassTerminal:
		return "terminal"
	case ClassNonTerminal:
		return "non-terminal"
	default:
		return "invalid"
	}
}

// Symbols converts a string into its symbol sequence.
func Symbols(s string) []Symbol {
	out := make([]Symbol, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = Symbol(s[i])
	}
	return out
}

// Position is one level of the expansion position stack.
// It is either Begin, End or a concrete offset into the sequence at that level.
type Position int

const (
	// Begin marks a level that was just entered and has not been resolved yet.
	Begin Position = -1
	// End marks a level whose sequence is exhausted.
	End Position = math.MaxInt32
)

// IsIndex reports whether p is a concrete offset rather than a sentinel.
func (p Position) IsIndex() bool {
	return p != Begin && p != End
}
