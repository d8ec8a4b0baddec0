package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/beatbox/internal/config"
	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beatbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	}
}

func TestLoad_OverridesAndKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(write(t, `
log_level: debug
grammar:
  policy: range
  non_terminals: A-L
  lookup: empty
audio:
  seed: 42
  amplitudes:
    "_": -16
    "?": "-8..8"
limits:
  max_steps: 1000
server:
  store: redis
  lock_ttl: 5s
  redis:
    addr: redis:6379
    ttl: 1h
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "A-L", cfg.Grammar.NonTerminals)
	assert.Equal(t, "_-0?", cfg.Grammar.Terminals, "unset keys keep their defaults")
	assert.Equal(t, uint64(42), cfg.Audio.Seed)
	assert.Equal(t, "-16", cfg.Audio.Amplitudes["_"])
	assert.Equal(t, 1000, cfg.Limits.MaxSteps)
	assert.Equal(t, 5*time.Second, cfg.Server.LockTTL)
	assert.Equal(t, time.Hour, cfg.Server.Redis.TTL)
	assert.Equal(t, "beatbox:checkpoint:", cfg.Server.Redis.Prefix)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "grammar: [",
		"unknown key":   "grammar:\n  colour: red\n",
		"bad policy":    "grammar:\n  policy: fuzzy\n",
		"bad lookup":    "grammar:\n  lookup: maybe\n",
		"bad amplitude": "audio:\n  amplitudes:\n    x: loud\n",
		"bad store":     "server:\n  store: s3\n",
		"negative":      "limits:\n  max_steps: -1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(write(t, content))
			assert.Error(t, err)
		})
	}
}

func TestGrammarOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Grammar.Policy = grammar.PolicyRange
	cfg.Grammar.NonTerminals = "A-L"
	cfg.Grammar.Lookup = config.LookupEmpty

	opts, err := cfg.Grammar.Options()
	require.NoError(t, err)

	table, err := grammar.New(map[domain.Symbol]string{'A': "xB"}, opts...)
	require.NoError(t, err)
	assert.True(t, table.Lenient())
	assert.True(t, table.IsTerminal('x'))
}

func TestAudioSinkOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.Amplitudes = map[string]string{"x": "100"}

	opts, err := cfg.Audio.SinkOptions()
	require.NoError(t, err)

	sink := audio.NewSink(opts...)
	require.NoError(t, sink.Write('x'))
	assert.Equal(t, []int8{100}, sink.Samples())
}
