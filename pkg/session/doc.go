/*
Package session implements resumable expansion sessions.

A session is a traversal whose position lives in a ports.CheckpointStore between calls.
The Manager serialises access per session ID with reference-counted in-process locks and,
optionally, a ports.DistributedLocker so several replicas can share one store.
*/
package session
