package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/beatbox/pkg/domain"
	"github.com/aretw0/beatbox/pkg/expand"
	"github.com/aretw0/beatbox/pkg/grammar"
	"github.com/aretw0/beatbox/pkg/ports"
)

// Runner pumps terminals from a cursor into a sink.
type Runner struct {
	logger        *slog.Logger
	maxSteps      int
	checkInterval int
	store         ports.CheckpointStore
	checkpointID  string
}

// Result summarises one Run.
type Result struct {
	Steps   int  // transitions performed by this run
	Emitted int  // terminals written by this run
	Done    bool // whether the traversal finished
}

// New creates a runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		logger:        defaultLogger(),
		checkInterval: DefaultCheckInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run advances cur until it is done, ctx is cancelled, the step budget is spent or the
// sink fails. On an early stop with a store configured, the position is saved first.
func (r *Runner) Run(ctx context.Context, cur *expand.Cursor, sink ports.SampleSink) (Result, error) {
	var res Result
	for !cur.Done() {
		if res.Steps%r.checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, r.interrupt(ctx, cur, err)
			}
		}
		if r.maxSteps > 0 && res.Steps >= r.maxSteps {
			err := fmt.Errorf("%w: %d steps", domain.ErrStepBudgetExceeded, r.maxSteps)
			return res, r.interrupt(ctx, cur, err)
		}

		sym, ok := cur.Advance()
		res.Steps++
		if !ok {
			continue
		}
		if err := sink.Write(sym); err != nil {
			return res, fmt.Errorf("sink rejected %q: %w", rune(sym), err)
		}
		res.Emitted++
	}

	res.Done = true
	r.logger.Debug("traversal finished", "root", cur.Root(), "steps", res.Steps, "emitted", res.Emitted)
	if r.store != nil {
		if err := r.store.Delete(ctx, r.checkpointID); err != nil {
			r.logger.Warn("failed to clear checkpoint", "id", r.checkpointID, "error", err)
		}
	}
	return res, nil
}

// Expand starts a traversal of root over table and runs it.
func (r *Runner) Expand(ctx context.Context, table *grammar.Table, root string, sink ports.SampleSink, opts ...expand.Option) (Result, error) {
	cur := expand.New(table, opts...)
	if err := cur.Start(root); err != nil {
		return Result{}, err
	}
	return r.Run(ctx, cur, sink)
}

// Resume continues the traversal saved under the runner's checkpoint ID.
func (r *Runner) Resume(ctx context.Context, table *grammar.Table, sink ports.SampleSink, opts ...expand.Option) (Result, error) {
	if r.store == nil {
		return Result{}, errors.New("resume requires a checkpoint store")
	}
	cp, err := r.store.Load(ctx, r.checkpointID)
	if err != nil {
		return Result{}, err
	}

	cur := expand.New(table, opts...)
	if err := cur.Restore(cp); err != nil {
		return Result{}, err
	}
	r.logger.Debug("resuming traversal", "id", r.checkpointID, "stack", cur.String())
	return r.Run(ctx, cur, sink)
}

func (r *Runner) interrupt(ctx context.Context, cur *expand.Cursor, cause error) error {
	r.logger.Debug("traversal interrupted", "root", cur.Root(), "stack", cur.String(), "error", cause)
	if r.store == nil {
		return cause
	}
	// The caller's ctx may already be cancelled; the save must still go through.
	saveCtx := context.WithoutCancel(ctx)
	if err := r.store.Save(saveCtx, r.checkpointID, cur.Snapshot(r.checkpointID)); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to save checkpoint: %w", err))
	}
	return cause
}
