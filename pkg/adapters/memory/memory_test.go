package memory_test

import (
	"testing"

	"github.com/aretw0/beatbox/pkg/adapters/memory"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.RunCheckpointStoreContract(t, memory.NewStore())
}

func TestMemoryLoader_Contract(t *testing.T) {
	rules := map[string]string{"A": "BC", "B": "_", "C": "-0"}
	tests.RunRuleLoaderContract(t, memory.NewLoader(rules), rules)
}

func TestMemoryLoader_InvalidName(t *testing.T) {
	_, err := memory.NewLoader(map[string]string{"AB": "_"}).Load()
	assert.Error(t, err)
}

func TestMemoryLoader_Names(t *testing.T) {
	l := memory.NewLoader(map[string]string{"C": "", "A": "C"})
	assert.Equal(t, []string{"A", "C"}, l.Names())
}

func TestLiteralLoader(t *testing.T) {
	l := memory.NewLiteralLoader(grammar.WithPolicy(grammar.ClassicPolicy()))
	table, err := l.Load()
	require.NoError(t, err)
	assert.True(t, table.Has('L'))
	assert.Equal(t, "builtin:literal", l.Source())
}
