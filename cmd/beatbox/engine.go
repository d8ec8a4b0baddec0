package main

import (
	"log/slog"

	"github.com/aretw0/beatbox"
	"github.com/aretw0/beatbox/internal/config"
	"github.com/aretw0/beatbox/internal/logging"
	"github.com/aretw0/beatbox/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

// literalRules selects the built-in beat table instead of a rule file.
const literalRules = ":literal"

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger is silent unless --debug is set. Long-running commands log at the configured level.
func newLogger(cmd *cobra.Command, cfg config.Config, service bool) (*slog.Logger, error) {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return logging.New(slog.LevelDebug), nil
	}
	if !service {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// newEngine loads the configuration and the rule table at rulePath.
func newEngine(cmd *cobra.Command, rulePath string, service bool, extra ...beatbox.Option) (*beatbox.Engine, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	logger, err := newLogger(cmd, cfg, service)
	if err != nil {
		return nil, cfg, err
	}
	grammarOpts, err := cfg.Grammar.Options()
	if err != nil {
		return nil, cfg, err
	}
	sinkOpts, err := cfg.Audio.SinkOptions()
	if err != nil {
		return nil, cfg, err
	}

	opts := []beatbox.Option{
		beatbox.WithLogger(logger),
		beatbox.WithGrammarOptions(grammarOpts...),
		beatbox.WithSinkOptions(sinkOpts...),
		beatbox.WithMaxSteps(cfg.Limits.MaxSteps),
	}
	if rulePath == literalRules {
		opts = append(opts, beatbox.WithLoader(memory.NewLiteralLoader()))
	}
	eng, err := beatbox.New(rulePath, append(opts, extra...)...)
	return eng, cfg, err
}
