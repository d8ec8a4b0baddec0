package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.RuleLoader over a rule file.
//
// Files ending in .yaml or .yml are read as a mapping of rule name to replacement:
//
//	rules:
//	  A: "BC"
//	  B: "__--"
//
// Anything else uses the line-oriented text format understood by grammar.Parse.
type Loader struct {
	path string
	opts []grammar.Option
}

// NewLoader creates a loader for path. Options are applied before those passed to Load.
func NewLoader(path string, opts ...grammar.Option) *Loader {
	return &Loader{path: path, opts: opts}
}

// Source returns the file path.
func (l *Loader) Source() string {
	return l.path
}

// Load reads and parses the file. Failures are reported as *domain.RuleFileError.
func (l *Loader) Load(opts ...grammar.Option) (*grammar.Table, error) {
	all := append(append([]grammar.Option(nil), l.opts...), opts...)
	if IsYAML(l.path) {
		return l.loadYAML(all)
	}
	return grammar.ParseFile(l.path, all...)
}

// IsYAML reports whether path uses the YAML rule format.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

type yamlRules struct {
	Rules map[string]string `yaml:"rules"`
}

func (l *Loader) loadYAML(opts []grammar.Option) (*grammar.Table, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, &domain.RuleFileError{Path: l.path, Err: err}
	}

	var doc yamlRules
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.RuleFileError{Path: l.path, Err: err}
	}

	rules := make(map[domain.Symbol]string, len(doc.Rules))
	for name, box := range doc.Rules {
		if len(name) != 1 {
			return nil, &domain.RuleFileError{
				Path: l.path,
				Err:  fmt.Errorf("rule name %q must be a single character", name),
			}
		}
		rules[domain.Symbol(name[0])] = box
	}

	table, err := grammar.New(rules, opts...)
	if err != nil {
		return nil, &domain.RuleFileError{Path: l.path, Err: err}
	}
	return table, nil
}
