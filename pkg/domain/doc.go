/*
Package domain contains the core models of the aiterm session controller.

It defines the transcript, the observable session snapshot, the command catalog
entries and the wire shapes exchanged with the remote executor. The package is
kept free of I/O so that adapters (HTTP, Redis, MCP, TUI) can share it.

# Key Entities

  - TranscriptEntry: One immutable line of the transcript (command, output, error, system).
  - SessionState: Snapshot of everything the renderer may read.
  - RegistryEntry: A known command with usage and examples.
  - ExecuteResponse: The executor's answer for one submitted command.
  - StateDiff: The delta between two snapshots, streamed to remote clients.
*/
package domain
