package domain

import (
	"errors"
	"fmt"
)

// ErrRuleFile is returned when a rule source cannot be read or parsed.
var ErrRuleFile = errors.New("rule file error")

// ErrUnknownSymbol is returned when a non-terminal has no registered replacement.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ErrMalformedStartSequence is returned when a start sequence contains a symbol that is
// neither a terminal nor a registered non-terminal.
var ErrMalformedStartSequence = errors.New("malformed start sequence")

// ErrCheckpointNotFound is returned when a checkpoint ID cannot be found in the store.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// ErrCheckpointMismatch is returned when a checkpoint is restored against a different rule table.
var ErrCheckpointMismatch = errors.New("checkpoint does not match rule table")

// ErrStepBudgetExceeded is returned when a traversal does not finish within its step budget.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// SymbolError reports an offending symbol and where it was found.
type SymbolError struct {
	Symbol Symbol
	Index  int    // Offset in the sequence, -1 when not applicable
	Rule   Symbol // Rule whose box contains the symbol, 0 for the root sequence
	Err    error
}

func (e *SymbolError) Error() string {
	where := "start sequence"
	if e.Rule != 0 {
		where = fmt.Sprintf("rule %q", rune(e.Rule))
	}
	if e.Index >= 0 {
		return fmt.Sprintf("%v: %q at offset %d of %s", e.Err, rune(e.Symbol), e.Index, where)
	}
	return fmt.Sprintf("%v: %q in %s", e.Err, rune(e.Symbol), where)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// RuleFileError reports a failure while loading a rule source.
type RuleFileError struct {
	Path string
	Line int // 1-based, 0 when the failure is not tied to a line
	Err  error
}

func (e *RuleFileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%v: %s:%d: %v", ErrRuleFile, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrRuleFile, e.Path, e.Err)
}

// Unwrap exposes both ErrRuleFile and the underlying cause to errors.Is.
func (e *RuleFileError) Unwrap() []error {
	return []error{ErrRuleFile, e.Err}
}
