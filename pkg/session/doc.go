/*
Package session serializes access to persisted console sessions.

The Manager pairs a ports.SnapshotStore with per-session mutexes (reference
counted, so idle sessions leave nothing behind) and, when several server
replicas share a Redis store, an optional ports.DistributedLocker.
*/
package session
