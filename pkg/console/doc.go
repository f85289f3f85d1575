/*
Package console implements the session controller of the aiterm console.

The controller is an explicit state machine: every user action and every network
resolution is a Msg handed to Controller.Update, which applies a transition to the
session Store and returns the Cmds that perform the asynchronous work. The controller
never starts goroutines itself; a driver (Loop, the bubbletea model or the HTTP hub)
runs the Cmds and feeds their results back through Update from a single goroutine.

# Components

  - Store: the authoritative session state (transcript, directory, loading flag, suggestions).
  - HistoryNavigator: cursor over previously submitted commands.
  - Aggregator: merges registry matches with remote completions.
  - Pipeline: admission control and the round-trip to the remote executor.
  - Scheduler: the cancellable debounce task that guards suggestion ordering.
*/
package console
