package beatbox

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/aretw0/beatbox/internal/logging"
	"github.com/aretw0/beatbox/pkg/adapters/file"
	"github.com/aretw0/beatbox/pkg/audio"
	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/expand"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
	"github.com/aretw0/beatbox/pkg/runner"
	"golang.org/x/sync/errgroup"
)

// Engine is the high-level entry point for the beatbox library.
// It binds a rule table to the runner, the audio sink and observability hooks.
// An Engine is safe for concurrent use; every call gets its own cursor.
type Engine struct {
	table       *grammar.Table
	loader      ports.RuleLoader
	grammarOpts []grammar.Option
	sinkOpts    []audio.SinkOption
	hooks       domain.LifecycleHooks
	maxSteps    int
	parallelism int
	logger      *slog.Logger
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks on every traversal.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom RuleLoader, bypassing the default file loader.
func WithLoader(l ports.RuleLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithTable uses an already built rule table.
func WithTable(t *grammar.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// WithGrammarOptions forwards options to the rule loader.
func WithGrammarOptions(opts ...grammar.Option) Option {
	return func(e *Engine) {
		e.grammarOpts = append(e.grammarOpts, opts...)
	}
}

// WithSinkOptions configures the audio sink used by the Render methods.
func WithSinkOptions(opts ...audio.SinkOption) Option {
	return func(e *Engine) {
		e.sinkOpts = append(e.sinkOpts, opts...)
	}
}

// WithMaxSteps bounds every traversal. Zero means unbounded.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithParallelism limits how many traversals CountAll runs at once (default: GOMAXPROCS).
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine.
// By default the rules are read from rulePath; with WithLoader or WithTable the path
// is only used as a descriptive name and may be empty.
func New(rulePath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.parallelism <= 0 {
		eng.parallelism = runtime.GOMAXPROCS(0)
	}
	eng.Name = rulePath

	if eng.table == nil {
		if eng.loader == nil {
			if rulePath == "" {
				return nil, fmt.Errorf("rulePath is required when no loader or table is provided")
			}
			eng.loader = file.NewLoader(rulePath)
		}
		if eng.Name == "" {
			eng.Name = eng.loader.Source()
		}

		table, err := eng.loader.Load(eng.grammarOpts...)
		if err != nil {
			return nil, err
		}
		eng.table = table
	}

	if eng.Name != "" {
		eng.logger = eng.logger.With("rules", eng.Name)
	}
	eng.logger.Debug("rule table ready",
		"rules", eng.table.Len(),
		"policy", eng.table.Policy().String(),
		"fingerprint", eng.table.Fingerprint(),
	)
	return eng, nil
}

// Table returns the rule table.
func (e *Engine) Table() *grammar.Table {
	return e.table
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Cursor returns a cursor started at root, with the engine hooks attached.
func (e *Engine) Cursor(root string) (*expand.Cursor, error) {
	cur := expand.New(e.table, expand.WithHooks(e.hooks))
	if err := cur.Start(root); err != nil {
		return nil, err
	}
	return cur, nil
}

func (e *Engine) runner(opts ...runner.Option) *runner.Runner {
	base := []runner.Option{runner.WithLogger(e.logger), runner.WithMaxSteps(e.maxSteps)}
	return runner.New(append(base, opts...)...)
}

// Run expands root into sink.
func (e *Engine) Run(ctx context.Context, root string, sink ports.SampleSink) (runner.Result, error) {
	return e.runner().Expand(ctx, e.table, root, sink, expand.WithHooks(e.hooks))
}

// Expand returns the complete terminal stream of root.
func (e *Engine) Expand(ctx context.Context, root string) (string, error) {
	var sb strings.Builder
	_, err := e.Run(ctx, root, ports.SinkFunc(func(sym domain.Symbol) error {
		return sb.WriteByte(byte(sym))
	}))
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Count returns the number of terminals root expands to.
func (e *Engine) Count(ctx context.Context, root string) (int, error) {
	res, err := e.Run(ctx, root, ports.SinkFunc(func(domain.Symbol) error { return nil }))
	if err != nil {
		return 0, err
	}
	return res.Emitted, nil
}

// CountAll counts several roots concurrently. The first failure cancels the rest.
func (e *Engine) CountAll(ctx context.Context, roots []string) (map[string]int, error) {
	counts := make([]int, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, root := range roots {
		g.Go(func() error {
			n, err := e.Count(ctx, root)
			if err != nil {
				return fmt.Errorf("%q: %w", root, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(roots))
	for i, root := range roots {
		out[root] = counts[i]
	}
	return out, nil
}

// NewSink returns an empty audio sink configured like the engine's renders.
func (e *Engine) NewSink() *audio.Sink {
	return audio.NewSink(e.sinkOpts...)
}

// Render expands root into a new audio sink.
func (e *Engine) Render(ctx context.Context, root string) (*audio.Sink, error) {
	sink := e.NewSink()
	if _, err := e.Run(ctx, root, sink); err != nil {
		return nil, err
	}
	return sink, nil
}

// RenderWAV expands root and encodes the samples to w. It returns the sample count.
func (e *Engine) RenderWAV(ctx context.Context, root string, w io.WriteSeeker) (int, error) {
	sink, err := e.Render(ctx, root)
	if err != nil {
		return 0, err
	}
	if err := sink.Encode(w); err != nil {
		return 0, err
	}
	return sink.Len(), nil
}

// RenderFile expands root into a WAV file at path. It returns the sample count.
// The file is only created once the expansion succeeded.
func (e *Engine) RenderFile(ctx context.Context, root, path string) (int, error) {
	sink, err := e.Render(ctx, root)
	if err != nil {
		return 0, err
	}
	if err := sink.WriteFile(path); err != nil {
		return 0, err
	}
	e.logger.Info("wav written", "path", path, "samples", sink.Len(), "seconds", sink.Duration())
	return sink.Len(), nil
}

// TraceFunc receives one cursor transition: the stack before, the terminal (if any)
// and the stack after.
type TraceFunc func(before string, sym domain.Symbol, emitted bool, after string) error

// Trace expands root one transition at a time, reporting every step to fn.
func (e *Engine) Trace(ctx context.Context, root string, fn TraceFunc) error {
	cur, err := e.Cursor(root)
	if err != nil {
		return err
	}
	for steps := 0; !cur.Done(); steps++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.maxSteps > 0 && steps >= e.maxSteps {
			return fmt.Errorf("%w: %d steps", domain.ErrStepBudgetExceeded, e.maxSteps)
		}
		before := cur.String()
		sym, ok := cur.Advance()
		if err := fn(before, sym, ok, cur.String()); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports which rules root can reach. It never expands, so it terminates for
// self-referential tables.
func (e *Engine) Validate(root string) (grammar.Report, error) {
	if err := e.table.ValidateSequence(root); err != nil {
		return grammar.Report{}, err
	}
	return grammar.Reachable(e.table, root), nil
}

// RenderToFile is a convenience for one-shot use: load rules from rulePath and write
// the WAV for root to outPath.
func RenderToFile(ctx context.Context, rulePath, root, outPath string, opts ...Option) (int, error) {
	eng, err := New(rulePath, opts...)
	if err != nil {
		return 0, err
	}
	return eng.RenderFile(ctx, root, outPath)
}
