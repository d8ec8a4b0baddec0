package grammar

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/aretw0/beatbox/pkg/domain"
)

const maxLineSize = 16 << 20

// ParseFile reads a rule file from disk. See Parse for the format.
func ParseFile(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.RuleFileError{Path: path, Err: err}
	}
	defer f.Close()

	return parse(f, path, opts)
}

// Parse reads rules in the line-oriented rule file format.
//
// Lines whose first character is '#' are comments. On any other line the first
// non-terminal names the rule and every following terminal or non-terminal is appended to
// that rule's box; other characters are skipped. A line that only names a rule declares
// it with an empty box. Lines naming the same rule accumulate in file order.
//
// On failure the returned table is nil and the error is a *domain.RuleFileError.
func Parse(r io.Reader, opts ...Option) (*Table, error) {
	return parse(r, "<input>", opts)
}

func parse(r io.Reader, path string, opts []Option) (*Table, error) {
	b := NewBuilder(opts...)
	policy := b.Policy()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" || line[0] == '#' {
			continue
		}

		var name domain.Symbol
		var box []domain.Symbol
		for i := 0; i < len(line); i++ {
			sym := domain.Symbol(line[i])
			class := policy.Classify(sym)
			if name == 0 {
				if class == domain.ClassNonTerminal {
					name = sym
				}
				continue
			}
			if class != domain.ClassInvalid {
				box = append(box, sym)
			}
		}
		if name == 0 {
			continue
		}
		if err := b.Append(name, box...); err != nil {
			return nil, &domain.RuleFileError{Path: path, Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &domain.RuleFileError{Path: path, Line: lineNo + 1, Err: err}
	}

	t, err := b.Build()
	if err != nil {
		var symErr *domain.SymbolError
		if errors.As(err, &symErr) {
			return nil, &domain.RuleFileError{Path: path, Err: symErr}
		}
		return nil, &domain.RuleFileError{Path: path, Err: err}
	}
	return t, nil
}
