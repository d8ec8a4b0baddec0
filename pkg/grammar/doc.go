/*
Package grammar implements the rule table of a context-free, L-system-like rewrite grammar.

A rule table maps each non-terminal symbol to its replacement sequence (its "box").
Which characters are terminals and which are non-terminals is decided by an explicit
classification policy:

  - RangePolicy: a letter range is non-terminal, every other character is terminal.
  - TerminalSetPolicy: a letter range is non-terminal, a configured set of characters is
    terminal, and everything else is invalid.

Tables are immutable once built, so a single *Table can be shared by any number of
concurrently running cursors without locking.

Tables are built from literal definitions (New, Builder, Literal) or parsed from the
line-oriented rule file format (Parse, ParseFile):

	# comment lines start with '#'
	A ????????????????
	B ________________
	E BBBBBBBB
	E BBBBBBBB   <- a second line for E appends to the same box

On each line the first non-terminal names the rule; every following terminal or
non-terminal is appended to its box; any other character is skipped.
*/
package grammar
