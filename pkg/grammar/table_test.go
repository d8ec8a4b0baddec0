package grammar

import (
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicies_Classify(t *testing.T) {
	tests := []struct {
		name   string
		policy Classifier
		sym    domain.Symbol
		want   domain.Class
	}{
		{"default non-terminal", DefaultPolicy(), 'Q', domain.ClassNonTerminal},
		{"default terminal", DefaultPolicy(), '?', domain.ClassTerminal},
		{"default invalid", DefaultPolicy(), ' ', domain.ClassInvalid},
		{"default lowercase invalid", DefaultPolicy(), 'a', domain.ClassInvalid},
		{"classic non-terminal", ClassicPolicy(), 'L', domain.ClassNonTerminal},
		{"classic outside range is terminal", ClassicPolicy(), 'M', domain.ClassTerminal},
		{"classic digit is terminal", ClassicPolicy(), '1', domain.ClassTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Classify(tt.sym))
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(PolicyRange, "A-L", "")
	require.NoError(t, err)
	assert.Equal(t, RangePolicy{First: 'A', Last: 'L'}, p)

	p, err = ParsePolicy(PolicyTerminalSet, "A-Z", "01")
	require.NoError(t, err)
	assert.Equal(t, domain.ClassTerminal, p.Classify('1'))
	assert.Equal(t, domain.ClassInvalid, p.Classify('2'))

	_, err = ParsePolicy("weighted", "A-Z", "01")
	assert.Error(t, err)

	_, err = ParsePolicy(PolicyTerminalSet, "Z-A", "01")
	assert.Error(t, err)

	_, err = ParsePolicy(PolicyTerminalSet, "A-Z", "")
	assert.Error(t, err)

	_, err = ParsePolicy(PolicyTerminalSet, "A-Z", "0B")
	assert.Error(t, err, "terminal inside the non-terminal range must be rejected")
}

func TestNew_Literal(t *testing.T) {
	table, err := New(map[domain.Symbol]string{'A': "01", 'B': "AA"}, WithPolicy(TerminalSetPolicy{First: 'A', Last: 'Z', Terminals: "01"}))
	require.NoError(t, err)

	box, err := table.Lookup('B')
	require.NoError(t, err)
	assert.Equal(t, domain.Symbols("AA"), box)

	assert.True(t, table.IsNonTerminal('A'))
	assert.True(t, table.IsTerminal('0'))
	assert.False(t, table.IsTerminal('A'))
	assert.Equal(t, []domain.Symbol{'A', 'B'}, table.Names())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, map[string]string{"A": "01", "B": "AA"}, table.Rules())
}

func TestNew_EmptyBoxIsValid(t *testing.T) {
	table, err := New(map[domain.Symbol]string{'A': ""})
	require.NoError(t, err)

	box, err := table.Lookup('A')
	require.NoError(t, err)
	assert.Empty(t, box)
	assert.True(t, table.Has('A'))
}

func TestNew_RejectsInvalidSymbol(t *testing.T) {
	_, err := New(map[domain.Symbol]string{'A': "0x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)

	var symErr *domain.SymbolError
	require.True(t, errors.As(err, &symErr))
	assert.Equal(t, domain.Symbol('x'), symErr.Symbol)
	assert.Equal(t, domain.Symbol('A'), symErr.Rule)
	assert.Equal(t, 1, symErr.Index)
}

func TestNew_UndefinedReference(t *testing.T) {
	rules := map[domain.Symbol]string{'A': "0B"}

	_, err := New(rules)
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)

	table, err := New(rules, WithImplicitEmpty())
	require.NoError(t, err)
	assert.True(t, table.Lenient())

	box, err := table.Lookup('B')
	require.NoError(t, err)
	assert.Empty(t, box)
}

func TestLookup_Unknown(t *testing.T) {
	table := MustNew(map[domain.Symbol]string{'A': "0"})

	_, err := table.Lookup('Q')
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)

	_, err = table.Lookup('0')
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol, "terminals have no box")
}

func TestLookup_ReturnsCopy(t *testing.T) {
	table := MustNew(map[domain.Symbol]string{'A': "0_"})

	box, err := table.Lookup('A')
	require.NoError(t, err)
	box[0] = '?'

	again, _ := table.Lookup('A')
	assert.Equal(t, domain.Symbols("0_"), again)
}

func TestValidateSequence(t *testing.T) {
	table := MustNew(map[domain.Symbol]string{'A': "0"})

	assert.NoError(t, table.ValidateSequence("A0A_"))
	assert.NoError(t, table.ValidateSequence(""))

	err := table.ValidateSequence("A B")
	assert.ErrorIs(t, err, domain.ErrMalformedStartSequence)

	err = table.ValidateSequence("AZ")
	assert.ErrorIs(t, err, domain.ErrMalformedStartSequence)
	var symErr *domain.SymbolError
	require.True(t, errors.As(err, &symErr))
	assert.Equal(t, 1, symErr.Index)
}

func TestFingerprint(t *testing.T) {
	a := MustNew(map[domain.Symbol]string{'A': "01", 'B': "A"}, WithPolicy(TerminalSetPolicy{'A', 'Z', "01"}))
	b := MustNew(map[domain.Symbol]string{'B': "A", 'A': "01"}, WithPolicy(TerminalSetPolicy{'A', 'Z', "01"}))
	c := MustNew(map[domain.Symbol]string{'A': "10", 'B': "A"}, WithPolicy(TerminalSetPolicy{'A', 'Z', "01"}))

	assert.NotEmpty(t, a.Fingerprint())
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestLiteral(t *testing.T) {
	table := Literal()
	assert.Equal(t, 12, table.Len())

	classic := Literal(WithPolicy(ClassicPolicy()))
	assert.Equal(t, table.Rules(), classic.Rules())
}

func TestTable_ConcurrentReaders(t *testing.T) {
	table := Literal()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range table.Names() {
				_, err := table.Lookup(name)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestReachable(t *testing.T) {
	table := MustNew(map[domain.Symbol]string{
		'A': "0B",
		'B': "C1",
		'C': "",
		'D': "?",
	}, WithPolicy(TerminalSetPolicy{'A', 'Z', "01?"}))

	report := Reachable(table, "A")
	assert.Equal(t, domain.Symbols("ABC"), report.Reachable)
	assert.Equal(t, domain.Symbols("D"), report.Unused)
	assert.Equal(t, domain.Symbols("01"), report.Terminals)
	assert.Equal(t, domain.Symbols("C"), report.Empty)
}

func TestReachable_Cycle(t *testing.T) {
	table := MustNew(map[domain.Symbol]string{'A': "0B", 'B': "A"})

	report := Reachable(table, "B")
	assert.Equal(t, domain.Symbols("AB"), report.Reachable)
	assert.Empty(t, report.Unused)
}
