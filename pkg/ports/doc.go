/*
Package ports defines the driven ports (interfaces) around the expansion engine.

These interfaces decouple the rule table and cursor from external implementations,
so the same traversal can read rules from files or memory, persist paused traversals
in several backends and write terminals to any sample consumer.

# Key Interfaces

  - RuleLoader: produces a rule table (e.g., from a rule file or an in-memory map).
  - CheckpointStore: persists and loads paused traversals (domain.Checkpoint).
  - DistributedLocker: coordinates access to a checkpoint across replicas.
  - SampleSink: consumes the terminal stream one symbol at a time.
*/
package ports
