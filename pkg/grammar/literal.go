package grammar

import "github.com/aretw0/beatbox/pkg/domain"

// literalRules is the built-in beat: noise bars, square waves at three widths, and
// bars/phrases arranged from them.
var literalRules = map[domain.Symbol]string{
	'A': "????????????????????????????????",
	'B': "________________________________",
	'C': "__--__________------------------",
	'D': "______------______------______--",
	'E': "BBBBBBBBBBBBBBBB",
	'F': "CCCCCCCCCCCCCCCC",
	'G': "DDDDDDDDDDDDDDDD",
	'H': "AAFEFEFEEEAAGEGEGEEE",
	'I': "AAFEFEFEGEAAEEFEEEEE",
	'J': "AAEEEEEEEEAAEEEEEEEE",
	'K': "AAEEAAEEAAEEAAEEAAEEAAEEAAEEAAEE",
	'L': "JJJKHIHIHHHIHIHIHHHIJJ",
}

// LiteralStart is the rule that expands to the whole built-in beat.
const LiteralStart = "L"

// Literal returns the built-in beat table. With no options it uses DefaultPolicy;
// ClassicPolicy yields the same expansions.
func Literal(opts ...Option) *Table {
	return MustNew(literalRules, opts...)
}
