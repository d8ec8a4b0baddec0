// Package config loads beatbox settings from a YAML file.
//
// The file is decoded into a generic map first and then into Config with mapstructure,
// so numbers, strings and durations can be written loosely ("30s", 16, "16").
// Keys that are absent keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Lookup modes for non-terminals that are referenced but never defined.
const (
	LookupStrict = "strict"
	LookupEmpty  = "empty"
)

// Store backends for the HTTP server.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the complete application configuration.
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Grammar  GrammarConfig `mapstructure:"grammar"`
	Audio    AudioConfig   `mapstructure:"audio"`
	Limits   LimitsConfig  `mapstructure:"limits"`
	Server   ServerConfig  `mapstructure:"server"`
}

// GrammarConfig selects how symbols are classified.
type GrammarConfig struct {
	Policy       string `mapstructure:"policy"`
	NonTerminals string `mapstructure:"non_terminals"`
	Terminals    string `mapstructure:"terminals"`
	Lookup       string `mapstructure:"lookup"`
}

// AudioConfig controls sample generation.
type AudioConfig struct {
	Seed       uint64            `mapstructure:"seed"`
	Amplitudes map[string]string `mapstructure:"amplitudes"`
}

// LimitsConfig bounds traversal work.
type LimitsConfig struct {
	MaxSteps int `mapstructure:"max_steps"`
}

// ServerConfig configures the HTTP and session layer.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	Store         string        `mapstructure:"store"`
	CheckpointDir string        `mapstructure:"checkpoint_dir"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	Redis         RedisConfig   `mapstructure:"redis"`
}

// RedisConfig configures the redis checkpoint store and locker.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Grammar: GrammarConfig{
			Policy:       grammar.PolicyTerminalSet,
			NonTerminals: "A-Z",
			Terminals:    "_-0?",
			Lookup:       LookupStrict,
		},
		Audio: AudioConfig{
			Seed: 1,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			Store:         StoreMemory,
			CheckpointDir: ".beatbox/checkpoints",
			LockTTL:       30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "beatbox:checkpoint:",
			},
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode merges YAML data into cfg.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate checks the settings that can be checked without I/O.
func (c Config) Validate() error {
	if _, err := c.Grammar.Options(); err != nil {
		return err
	}
	if _, err := c.Audio.SinkOptions(); err != nil {
		return err
	}
	if c.Limits.MaxSteps < 0 {
		return fmt.Errorf("limits.max_steps must not be negative")
	}
	switch c.Server.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown server.store %q (expected %s, %s or %s)", c.Server.Store, StoreMemory, StoreFile, StoreRedis)
	}
	return nil
}

// Options converts the grammar section into table options.
func (g GrammarConfig) Options() ([]grammar.Option, error) {
	policy, err := grammar.ParsePolicy(g.Policy, g.NonTerminals, g.Terminals)
	if err != nil {
		return nil, fmt.Errorf("grammar: %w", err)
	}
	opts := []grammar.Option{grammar.WithPolicy(policy)}

	switch g.Lookup {
	case LookupStrict, "":
	case LookupEmpty:
		opts = append(opts, grammar.WithImplicitEmpty())
	default:
		return nil, fmt.Errorf("grammar: unknown lookup mode %q (expected %q or %q)", g.Lookup, LookupStrict, LookupEmpty)
	}
	return opts, nil
}

// SinkOptions converts the audio section into sink options.
func (a AudioConfig) SinkOptions() ([]audio.SinkOption, error) {
	opts := []audio.SinkOption{audio.WithSeed(a.Seed)}
	if len(a.Amplitudes) > 0 {
		amps, err := audio.ParseAmplitudes(a.Amplitudes)
		if err != nil {
			return nil, fmt.Errorf("audio: %w", err)
		}
		opts = append(opts, audio.WithAmplitudes(amps))
	}
	return opts, nil
}
