/*
Package aiterm is the session controller of an AI-assisted terminal console.

A console session is a transcript of commands and their results, a working directory
reported by a remote executor, a history of submitted commands and a list of
autocomplete suggestions merged from a local command registry and a remote service.
The executor decides whether an input is a shell command or a natural-language request
("ai ..."); the console only renders what it answers.

# Architecture

The session logic lives in pkg/console as an explicit state machine. Drivers feed it
events and run the asynchronous work it asks for:

  - Console (this package): an embeddable session driven by console.Loop.
  - internal/presentation/tui: the interactive bubbletea front end.
  - pkg/runner: a line-mode front end for pipes and dumb terminals.
  - pkg/adapters/http: a REST + SSE server hosting many sessions.
  - pkg/adapters/mcp: the command registry exposed as MCP tools.

Executors, suggestion services and snapshot stores are ports (pkg/ports) with HTTP,
in-memory and Redis adapters.

# Usage

	c, err := aiterm.New("http://localhost:8000")
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	st, err := c.Exec(ctx, "ls -la")
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range st.Transcript {
		fmt.Println(e.Kind, e.Text)
	}
*/
package aiterm
