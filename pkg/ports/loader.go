package ports

import "github.com/aretw0/beatbox/pkg/grammar"

// RuleLoader defines how the engine obtains its rule table.
// This allows the rule source (text file, YAML, memory) to be decoupled.
type RuleLoader interface {
	// Load builds a rule table. Options such as the classification policy are
	// forwarded to the table builder.
	Load(opts ...grammar.Option) (*grammar.Table, error)

	// Source names where the rules come from, for logs and error messages.
	Source() string
}
