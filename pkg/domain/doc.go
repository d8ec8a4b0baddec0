/*
Package domain contains the core vocabulary shared by every beatbox package.

It defines grammar symbols and their classes, the position sentinels used by the
expansion cursor, the serialisable cursor checkpoint, lifecycle events and the
sentinel errors. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Symbol: a single grammar character, classified as terminal or non-terminal.
  - Position: one level of the cursor's position stack (Begin, End or an index).
  - Checkpoint: a snapshot of a paused traversal that can be persisted and resumed.
  - LifecycleHooks: callbacks fired by the cursor for observability.
*/
package domain
