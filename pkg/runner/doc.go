/*
Package runner drives an expansion cursor into a sample sink.

A cursor expands lazily and may never finish for self-referential rule tables, so the
runner is where callers impose limits: context cancellation and an optional step budget.
When a checkpoint store is configured, an interrupted run saves its position and can be
picked up later with Resume.

# Usage

	r := runner.New(
		runner.WithMaxSteps(1_000_000),
		runner.WithStore(store, "beat-1"),
		runner.WithLogger(logger),
	)

	res, err := r.Run(ctx, cursor, sink)
*/
package runner
