/*
Package observability turns cursor lifecycle hooks into Prometheus metrics and
structured log lines.

Both helpers return domain.LifecycleHooks, so they compose with Merge and plug into
expand.WithHooks, session.WithHooks or the top-level engine.
*/
package observability
