/*
Package ports defines the driven ports (interfaces) of the aiterm console.

These interfaces decouple the session controller from the remote services it talks to
and from the storage used by the multi-session server.

# Key Interfaces

  - Executor: Runs a submitted command remotely and reports its output.
  - Suggester: Returns remote completions for a partial command.
  - StatusProvider: Reports the executor's working directory at session start.
  - SnapshotStore: Persists session snapshots for server mode.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
